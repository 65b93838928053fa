// Package api exposes the exam portal HTTP surface: PWA shell assets,
// the install prompt lifecycle, the diagnostics probe suite and
// session navigation.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	gocache "github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/capability"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/conf"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/datastore/repository"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/installprompt"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/logger"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/observability/metrics"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/offline"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/session"
)

// Controller carries the portal's HTTP handlers and their collaborators.
type Controller struct {
	Echo     *echo.Echo
	Group    *echo.Group
	Settings *conf.Settings

	sessions      *session.Manager
	offline       *offline.Service
	prompts       *installprompt.Manager
	bus           *installprompt.EventBus
	suite         *capability.Suite
	recorder      *capability.Recorder
	probeRuns     repository.ProbeRunRepository
	installEvents repository.InstallEventRepository
	metrics       *metrics.Metrics
	log           logger.Logger

	// pending holds the not-yet-resolved install invitation per session,
	// so the choice endpoint can find it after accept consumed it from
	// the controller.
	pending *gocache.Cache
}

// Config wires a Controller.
type Config struct {
	Settings      *conf.Settings
	Sessions      *session.Manager
	Offline       *offline.Service
	Prompts       *installprompt.Manager
	Bus           *installprompt.EventBus
	Suite         *capability.Suite
	Recorder      *capability.Recorder
	ProbeRuns     repository.ProbeRunRepository
	InstallEvents repository.InstallEventRepository
	Registry      prometheus.Registerer
	Log           logger.Logger
}

// New creates the Controller, its echo instance and all routes.
func New(cfg Config) *Controller {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())

	c := &Controller{
		Echo:          e,
		Group:         e.Group("/api/v1"),
		Settings:      cfg.Settings,
		sessions:      cfg.Sessions,
		offline:       cfg.Offline,
		prompts:       cfg.Prompts,
		bus:           cfg.Bus,
		suite:         cfg.Suite,
		recorder:      cfg.Recorder,
		probeRuns:     cfg.ProbeRuns,
		installEvents: cfg.InstallEvents,
		log:           cfg.Log,
		pending:       gocache.New(pendingInvitationTTL, pendingSweepInterval),
	}
	if cfg.Registry != nil {
		c.metrics = metrics.New(cfg.Registry)
		if gatherer, ok := cfg.Registry.(prometheus.Gatherer); ok {
			e.GET("/metrics", echo.WrapHandler(
				promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
		}
		if cfg.Bus != nil {
			cfg.Bus.Subscribe(func(event *installprompt.Event) {
				c.metrics.InstallEvents.WithLabelValues(event.Name).Inc()
			})
		}
	}

	c.registerPWARoutes()
	c.registerInstallRoutes()
	c.registerDiagnosticsRoutes()
	c.registerOfflineRoutes()
	c.registerNavigationRoutes()
	return c
}

// Start begins serving on the configured host and port. Blocks until
// the server stops.
func (c *Controller) Start() error {
	addr := fmt.Sprintf("%s:%d", c.Settings.WebServer.Host, c.Settings.WebServer.Port)
	c.log.Info("starting web server", logger.String("addr", addr))
	if err := c.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("web server failed: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully.
func (c *Controller) Shutdown(ctx context.Context) error {
	return c.Echo.Shutdown(ctx)
}

// sessionData resolves the request's session ID and server-side data.
func (c *Controller) sessionData(ctx echo.Context) (string, *session.Data, error) {
	id, err := c.sessions.SessionID(ctx.Response(), ctx.Request())
	if err != nil {
		return "", nil, err
	}
	return id, c.sessions.Data(id), nil
}

// logErrorIfEnabled logs at error level when a logger is wired.
func (c *Controller) logErrorIfEnabled(msg string, fields ...logger.Field) {
	if c.log != nil {
		c.log.Error(msg, fields...)
	}
}

// logDebugIfEnabled logs at debug level when debug mode is on.
func (c *Controller) logDebugIfEnabled(msg string, fields ...logger.Field) {
	if c.log != nil && c.Settings != nil && c.Settings.WebServer.Debug {
		c.log.Debug(msg, fields...)
	}
}
