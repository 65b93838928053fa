package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/logger"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/offline"
)

// workerRegistrationRequest reports a service worker registration.
type workerRegistrationRequest struct {
	Scope       string `json:"scope"`
	State       string `json:"state"`
	SyncCapable bool   `json:"syncCapable"`
}

// networkStatusRequest reports the client's connectivity.
type networkStatusRequest struct {
	Online bool `json:"online"`
}

func (c *Controller) registerOfflineRoutes() {
	sw := c.Group.Group("/sw")
	sw.POST("/register", c.registerWorker)
	sw.DELETE("/register", c.unregisterWorker)
	sw.GET("/registrations", c.listWorkerRegistrations)

	c.Group.POST("/network/status", c.reportNetworkStatus)
	c.Group.GET("/offline/status", c.getOfflineStatus)
}

// registerWorker records a client-reported service worker registration.
func (c *Controller) registerWorker(ctx echo.Context) error {
	var req workerRegistrationRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Scope == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "scope is required")
	}
	switch req.State {
	case offline.WorkerStateInstalling, offline.WorkerStateWaiting, offline.WorkerStateActive:
	case "":
		req.State = offline.WorkerStateActive
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown worker state")
	}

	c.offline.Registry.Register(offline.Registration{
		Scope:       req.Scope,
		State:       req.State,
		SyncCapable: req.SyncCapable,
	})
	c.logDebugIfEnabled("service worker registered",
		logger.String("scope", req.Scope),
		logger.String("state", req.State))
	return ctx.NoContent(http.StatusNoContent)
}

// unregisterWorker removes a registration by scope.
func (c *Controller) unregisterWorker(ctx echo.Context) error {
	scope := ctx.QueryParam("scope")
	if scope == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "scope is required")
	}
	if !c.offline.Registry.Remove(scope) {
		return echo.NewHTTPError(http.StatusNotFound, "no registration for scope")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// listWorkerRegistrations returns all known registrations.
func (c *Controller) listWorkerRegistrations(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, c.offline.Registry.List())
}

// reportNetworkStatus records the client's connectivity transition.
func (c *Controller) reportNetworkStatus(ctx echo.Context) error {
	var req networkStatusRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	c.offline.Network.SetOnline(req.Online)
	return ctx.NoContent(http.StatusNoContent)
}

// getOfflineStatus answers the offline subsystem status query.
func (c *Controller) getOfflineStatus(ctx echo.Context) error {
	status, err := c.offline.Status(ctx.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "status query failed")
	}
	return ctx.JSON(http.StatusOK, status)
}
