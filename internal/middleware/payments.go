package middleware

import (
	"github.com/deppfellow/payhost/internal/errs"
	"github.com/deppfellow/payhost/internal/service"
	"github.com/labstack/echo/v4"
)

// PaymentsGate short-circuits the payment routes when Razorpay was not
// configured at startup.
type PaymentsGate struct {
	payments *service.PaymentService
}

func NewPaymentsGate(payments *service.PaymentService) *PaymentsGate {
	return &PaymentsGate{payments: payments}
}

// RequireEnabled answers 503 without reading the body or calling Razorpay.
// It runs after the auth gate, so unauthenticated callers still get 401.
func (g *PaymentsGate) RequireEnabled(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !g.payments.Enabled() {
			GetLogger(c).Warn().Msg("razorpay not configured, rejecting payment request")
			return errs.NewServiceDisabledError(service.ServiceDisabledMessage)
		}
		return next(c)
	}
}
