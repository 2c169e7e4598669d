package handler

import (
	"net/http"
	"time"

	"github.com/deppfellow/payhost/internal/middleware"
	"github.com/deppfellow/payhost/internal/response"
	"github.com/deppfellow/payhost/internal/server"
	"github.com/deppfellow/payhost/internal/service"
	"github.com/labstack/echo/v4"
)

// HealthHandler exposes a "system" endpoint that uptime monitors and load
// balancers use to verify the service is alive.
//
// There are no local dependencies to ping. The checks report which
// provider integrations were configured at startup; a missing one makes
// the service "degraded", never unavailable, since the other endpoints keep working.
type HealthHandler struct {
	Handler
	services *service.Services
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(s *server.Server, services *service.Services) *HealthHandler {
	return &HealthHandler{
		Handler:  NewHandler(s),
		services: services,
	}
}

type healthCheck struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type healthReport struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Checks      map[string]healthCheck `json:"checks"`
}

// CheckHealth always answers 200 with status "healthy" or "degraded".
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	report := healthReport{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: h.server.Config.Primary.Env,
		Checks: map[string]healthCheck{
			"auth": {Status: "enabled", Detail: h.services.Auth.Provider()},
		},
	}

	if h.services.Payment.Enabled() {
		report.Checks["razorpay"] = healthCheck{Status: "enabled"}
	} else {
		report.Checks["razorpay"] = healthCheck{Status: "disabled", Detail: "credentials not provided"}
		report.Status = "degraded"
	}

	if h.server.Config.HostingConfigured() {
		report.Checks["heroku"] = healthCheck{Status: "enabled"}
	} else {
		report.Checks["heroku"] = healthCheck{Status: "disabled", Detail: "api key not provided"}
		report.Status = "degraded"
	}

	if report.Status != "healthy" {
		logger.Debug().Str("status", report.Status).Msg("health check degraded")

		if app := h.server.LoggerService.GetApplication(); app != nil {
			app.RecordCustomEvent("HealthCheckDegraded", map[string]any{
				"razorpay": report.Checks["razorpay"].Status,
				"heroku":   report.Checks["heroku"].Status,
			})
		}
	}

	return c.JSON(http.StatusOK, response.Data(report))
}
