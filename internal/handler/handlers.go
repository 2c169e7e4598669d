package handler

import (
	"github.com/deppfellow/payhost/internal/server"
	"github.com/deppfellow/payhost/internal/service"
)

// Handlers is a container that groups all HTTP handlers,
// so router setup passes one object around instead of many.
type Handlers struct {
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
	Payment *PaymentHandler
	Hosting *HostingHandler
}

// NewHandlers constructs the handler container.
func NewHandlers(s *server.Server, services *service.Services) *Handlers {
	return &Handlers{
		Health:  NewHealthHandler(s, services),
		OpenAPI: NewOpenAPIHandler(s),
		Payment: NewPaymentHandler(s, services.Payment),
		Hosting: NewHostingHandler(s, services.Hosting),
	}
}
