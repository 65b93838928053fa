package api

import (
	"io/fs"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/frontend"
	"github.com/iyasdevog/Dawa-college-exam-portal-sub005/internal/logger"
)

// registerPWARoutes serves the web app manifest and the service worker
// from root-level paths so the worker can claim scope "/".
func (c *Controller) registerPWARoutes() {
	c.Echo.GET("/manifest.webmanifest", c.serveManifest)
	c.Echo.GET("/sw.js", c.serveServiceWorker)
}

// serveManifest serves the PWA manifest with the correct MIME type.
func (c *Controller) serveManifest(ctx echo.Context) error {
	data, err := fs.ReadFile(frontend.StaticFS, "static/manifest.webmanifest")
	if err != nil {
		c.logErrorIfEnabled("failed to read manifest", logger.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "manifest not available")
	}
	ctx.Response().Header().Set("Cache-Control", "no-cache")
	return ctx.Blob(http.StatusOK, "application/manifest+json", data)
}

// serveServiceWorker serves the service worker script. The
// Service-Worker-Allowed header lets the worker control the whole
// origin even though the script lives under /sw.js.
func (c *Controller) serveServiceWorker(ctx echo.Context) error {
	data, err := fs.ReadFile(frontend.StaticFS, "static/sw.js")
	if err != nil {
		c.logErrorIfEnabled("failed to read service worker script", logger.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "service worker not available")
	}
	h := ctx.Response().Header()
	h.Set("Service-Worker-Allowed", "/")
	// Workers must revalidate so updates roll out promptly.
	h.Set("Cache-Control", "no-cache")
	return ctx.Blob(http.StatusOK, "application/javascript", data)
}
