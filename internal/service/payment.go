package service

import (
	"context"
	"strconv"
	"time"

	"github.com/deppfellow/payhost/internal/errs"
	"github.com/deppfellow/payhost/internal/lib/identity"
	"github.com/deppfellow/payhost/internal/lib/razorpay"
	"github.com/deppfellow/payhost/internal/model/payment"
	"github.com/deppfellow/payhost/internal/server"
	"github.com/rs/zerolog"
)

const (
	ServiceDisabledMessage   = "API not added"
	createOrderFailedMessage = "Failed to create Razorpay order"
)

type PaymentService struct {
	server *server.Server
	client *razorpay.Client
	now    func() time.Time
}

// NewPaymentService returns the payment service. A nil client disables it.
func NewPaymentService(s *server.Server, client *razorpay.Client) *PaymentService {
	return &PaymentService{
		server: s,
		client: client,
		now:    time.Now,
	}
}

// Enabled reports whether Razorpay credentials were provided at startup.
func (p *PaymentService) Enabled() bool {
	return p != nil && p.client != nil
}

func (p *PaymentService) CreateOrder(ctx context.Context, req *payment.CreateOrderRequest) (*payment.Order, error) {
	if !p.Enabled() {
		return nil, errs.NewServiceDisabledError(ServiceDisabledMessage)
	}

	logger := zerolog.Ctx(ctx)

	currency := req.Currency
	if currency == "" {
		currency = p.server.Config.Razorpay.DefaultCurrency
	}

	minor, err := req.MinorUnits()
	if err != nil {
		return nil, err
	}

	order, err := p.client.CreateOrder(ctx, razorpay.OrderRequest{
		Amount:   minor,
		Currency: currency,
		Receipt:  "receipt_" + strconv.FormatInt(p.now().UnixMilli(), 10),
	})
	if err != nil {
		return nil, errs.NewUpstreamError(createOrderFailedMessage, err)
	}

	logger.Info().
		Str("order_id", order.ID).
		Int64("amount", order.Amount).
		Str("currency", order.Currency).
		Str("user_id", identity.SubjectFromContext(ctx)).
		Msg("razorpay order created")

	return &payment.Order{
		OrderID:  order.ID,
		Amount:   order.Amount,
		Currency: order.Currency,
		KeyID:    p.client.KeyID(),
	}, nil
}

// VerifyPayment checks the checkout signature. A mismatch is a business
// failure (400), never an authentication failure.
func (p *PaymentService) VerifyPayment(ctx context.Context, req *payment.VerifyPaymentRequest) error {
	if !p.Enabled() {
		return errs.NewServiceDisabledError(ServiceDisabledMessage)
	}

	logger := zerolog.Ctx(ctx).With().
		Str("payment_id", req.PaymentID).
		Str("user_id", identity.SubjectFromContext(ctx)).
		Logger()

	if !p.client.VerifyPaymentSignature(req.OrderID, req.PaymentID, req.Signature) {
		logger.Warn().Msg("payment verification failed")
		return errs.NewBusinessError(payment.VerificationFailed)
	}

	logger.Info().Msg("payment verified")

	return nil
}
