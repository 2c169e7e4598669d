package middleware

import (
	"github.com/deppfellow/payhost/internal/server"
	"github.com/deppfellow/payhost/internal/service"
)

// Middlewares groups all middleware components used by the HTTP server,
// built once and reused during router setup.
type Middlewares struct {
	// Global holds CORS, request logging, recovery, secure headers and the
	// global error handler.
	Global *GlobalMiddlewares

	// Auth rejects requests without a valid bearer token.
	Auth *AuthMiddleware

	// ContextEnhancer builds the request-scoped logger.
	ContextEnhancer *ContextEnhancer

	// Tracing provides the New Relic middleware and transaction attributes.
	Tracing *TracingMiddleware

	// Payments answers 503 on payment routes when Razorpay is not configured.
	Payments *PaymentsGate
}

// NewMiddlewares constructs all middleware components.
//
// The New Relic application, if any, comes from the server's LoggerService;
// without it tracing degrades into a no-op.
func NewMiddlewares(s *server.Server, services *service.Services) *Middlewares {
	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		Auth:            NewAuthMiddleware(s, services.Auth),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, s.LoggerService.GetApplication()),
		Payments:        NewPaymentsGate(services.Payment),
	}
}
