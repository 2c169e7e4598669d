package handler

import (
	"github.com/deppfellow/payhost/internal/model/payment"
	"github.com/deppfellow/payhost/internal/server"
	"github.com/deppfellow/payhost/internal/service"
	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	Handler
	payments *service.PaymentService
}

func NewPaymentHandler(s *server.Server, payments *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		Handler:  NewHandler(s),
		payments: payments,
	}
}

// CreateOrder handles POST /create-razorpay-order.
func (h *PaymentHandler) CreateOrder() echo.HandlerFunc {
	return Handle(h.Handler,
		func(c echo.Context, req *payment.CreateOrderRequest) (*payment.Order, error) {
			return h.payments.CreateOrder(c.Request().Context(), req)
		},
		func() *payment.CreateOrderRequest { return &payment.CreateOrderRequest{} },
	)
}

// VerifyPayment handles POST /verify-razorpay-payment.
func (h *PaymentHandler) VerifyPayment() echo.HandlerFunc {
	return HandleMessage(h.Handler,
		func(c echo.Context, req *payment.VerifyPaymentRequest) (string, error) {
			if err := h.payments.VerifyPayment(c.Request().Context(), req); err != nil {
				return "", err
			}
			return payment.VerificationSucceeded, nil
		},
		func() *payment.VerifyPaymentRequest { return &payment.VerifyPaymentRequest{} },
	)
}
