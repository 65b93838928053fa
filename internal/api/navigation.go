package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/logger"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/session"
)

// viewRequest switches the session's active view.
type viewRequest struct {
	View string `json:"view"`
}

// viewResponse reports the session's active view.
type viewResponse struct {
	View  string   `json:"view"`
	Views []string `json:"views"`
}

func (c *Controller) registerNavigationRoutes() {
	nav := c.Group.Group("/navigation")
	nav.GET("/view", c.getActiveView)
	nav.PUT("/view", c.setActiveView)

	c.Group.POST("/auth/logout", c.logout)
}

// getActiveView returns the session's current view and the view catalog.
func (c *Controller) getActiveView(ctx echo.Context) error {
	_, data, err := c.sessionData(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}
	return ctx.JSON(http.StatusOK, viewResponse{
		View:  data.ActiveView(),
		Views: session.Views,
	})
}

// setActiveView switches the session's active view.
func (c *Controller) setActiveView(ctx echo.Context) error {
	_, data, err := c.sessionData(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}

	var req viewRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := data.SetActiveView(req.View); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return ctx.JSON(http.StatusOK, viewResponse{
		View:  data.ActiveView(),
		Views: session.Views,
	})
}

// logout ends the browsing session. The session's prompt controller,
// dismissal flag and pending invitation all die with it.
func (c *Controller) logout(ctx echo.Context) error {
	id, _, err := c.sessionData(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
	}

	c.prompts.Remove(id)
	c.pending.Delete(id)
	if err := c.sessions.End(ctx.Response(), ctx.Request(), id); err != nil {
		c.logErrorIfEnabled("failed to end session",
			logger.String("session_id", id), logger.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "logout failed")
	}
	return ctx.NoContent(http.StatusNoContent)
}
