// Package router initializes the HTTP router (using Echo).
//
// It registers the middlewares and defines the API routes,
// mapping specific paths to their corresponding handlers
package router

import (
	"strings"

	"github.com/deppfellow/payhost/internal/handler"
	"github.com/deppfellow/payhost/internal/metrics"
	"github.com/deppfellow/payhost/internal/middleware"
	"github.com/labstack/echo/v4"
)

// NewRouter builds the Echo instance.
//
// Middleware order matters:
//   - CORS and secure headers first, so preflight requests never reach auth
//   - request id, New Relic transaction, then the request logger built from both
//   - access log and metrics wrap everything below them and see final errors
//   - Recover sits inside them so panics are logged and counted as 500s
//   - the auth gate runs last, on every route except the system ones,
//     including unknown paths (401 without a token, 404 with one)
func NewRouter(h *handler.Handlers, m *middleware.Middlewares) *echo.Echo {
	router := echo.New()
	router.HideBanner = true
	router.HidePort = true

	router.HTTPErrorHandler = m.Global.GlobalErrorHandler

	router.Use(
		m.Global.CORS(),
		m.Global.Secure(),
		middleware.RequestID(),
		m.Tracing.NewRelicMiddleware(),
		m.Tracing.EnhanceTracing(),
		m.ContextEnhancer.EnhanceContext(),
		m.Global.RequestLogger(),
		metrics.Middleware(middleware.StatusOf),
		m.Global.Recover(),
		skipSystemRoutes(m.Auth.RequireAuth),
	)

	registerSystemRoutes(router, h)
	registerPaymentRoutes(router, h, m)
	registerHostingRoutes(router, h)

	return router
}

var systemPaths = []string{"/status", "/docs", "/metrics"}

// skipSystemRoutes applies mw to everything but the unauthenticated system routes.
func skipSystemRoutes(mw echo.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		protected := mw(next)
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			if strings.HasPrefix(path, "/static/") {
				return next(c)
			}
			for _, p := range systemPaths {
				if path == p {
					return next(c)
				}
			}
			return protected(c)
		}
	}
}

func registerPaymentRoutes(r *echo.Echo, h *handler.Handlers, m *middleware.Middlewares) {
	r.POST("/create-razorpay-order", h.Payment.CreateOrder(), m.Payments.RequireEnabled)
	r.POST("/verify-razorpay-payment", h.Payment.VerifyPayment(), m.Payments.RequireEnabled)
}

func registerHostingRoutes(r *echo.Echo, h *handler.Handlers) {
	heroku := r.Group("/heroku")

	heroku.POST("/create-app", h.Hosting.CreateApp())
	heroku.POST("/deploy-app", h.Hosting.DeployApp())
	heroku.GET("/app-status/:appId", h.Hosting.AppStatus())
	heroku.POST("/toggle-app", h.Hosting.ToggleApp())
}
