// Package service contains the business logic.
//
// It sits between the handler layer and the external providers.
// It receives validated requests from the handlers, calls the
// provider clients and maps their results and failures onto the
// response types and error kinds the handlers return.
package service

import (
	"github.com/deppfellow/payhost/internal/lib/heroku"
	"github.com/deppfellow/payhost/internal/lib/razorpay"
	"github.com/deppfellow/payhost/internal/server"
)

type Services struct {
	Auth    *AuthService
	Payment *PaymentService
	Hosting *HostingService
}

// NewServices builds every service from the server's config.
//
// The Razorpay client is only created when both credentials are set;
// without it the payment service reports itself disabled.
func NewServices(s *server.Server) (*Services, error) {
	authService, err := NewAuthService(s)
	if err != nil {
		return nil, err
	}

	cfg := s.Config

	var razorpayClient *razorpay.Client
	if cfg.PaymentsEnabled() {
		razorpayClient = razorpay.NewClient(
			cfg.Razorpay.BaseURL,
			cfg.Razorpay.KeyID,
			cfg.Razorpay.KeySecret,
			cfg.Outbound.Timeout,
			nil,
		)
	}

	herokuClient := heroku.NewClient(cfg.Heroku.BaseURL, cfg.Heroku.APIKey, cfg.Outbound.Timeout, nil)

	return &Services{
		Auth:    authService,
		Payment: NewPaymentService(s, razorpayClient),
		Hosting: NewHostingService(s, herokuClient),
	}, nil
}
