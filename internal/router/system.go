package router

import (
	"github.com/deppfellow/payhost/internal/handler"
	"github.com/deppfellow/payhost/internal/metrics"
	"github.com/deppfellow/payhost/static"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes registers endpoints that are not part of the business
// API and need no token: health, docs, the embedded docs assets and metrics.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)

	r.StaticFS("/static", static.Files)

	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)

	r.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}
