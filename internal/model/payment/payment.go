// Package payment holds the request and response shapes of the payment endpoints.
package payment

import (
	"math"
	"strings"

	"github.com/deppfellow/payhost/internal/errs"
	"github.com/deppfellow/payhost/internal/validation"
	"github.com/shopspring/decimal"
)

const (
	AmountNotPositiveMessage = "Amount must be greater than 0"
	AmountPrecisionMessage   = "Amount must have at most 2 decimal places"
	AmountTooLargeMessage    = "Amount is too large"
	VerificationFailed       = "Payment verification failed"
	VerificationSucceeded    = "Payment verified successfully"
)

// maxMinorUnits is the largest order amount, in minor units, that fits the
// provider's integer amount field.
var maxMinorUnits = decimal.NewFromInt(math.MaxInt64)

// CreateOrderRequest is the body of POST /create-razorpay-order.
// Amount is in major currency units (rupees), e.g. 500 or 499.99.
type CreateOrderRequest struct {
	Amount   *decimal.Decimal `json:"amount" validate:"required"`
	Currency string           `json:"currency" validate:"omitempty,len=3,alpha"`
}

func (r *CreateOrderRequest) Validate() error {
	if err := validation.Struct(r); err != nil {
		return err
	}

	if !r.Amount.IsPositive() {
		return errs.NewValidationError(AmountNotPositiveMessage)
	}

	// Minor units are integral: anything finer than paise cannot be charged.
	if !r.Amount.Equal(r.Amount.Truncate(2)) {
		return errs.NewValidationError(AmountPrecisionMessage)
	}

	if r.Amount.Shift(2).GreaterThan(maxMinorUnits) {
		return errs.NewValidationError(AmountTooLargeMessage)
	}

	r.Currency = strings.ToUpper(r.Currency)

	return nil
}

// MinorUnits converts Amount to the provider's minor unit (amount x 100).
// It fails instead of wrapping when the result does not fit an int64.
func (r *CreateOrderRequest) MinorUnits() (int64, error) {
	minor := r.Amount.Shift(2).BigInt()
	if !minor.IsInt64() {
		return 0, errs.NewValidationError(AmountTooLargeMessage)
	}
	return minor.Int64(), nil
}

// Order is the data returned for a created order.
type Order struct {
	OrderID  string `json:"orderId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	KeyID    string `json:"keyId"`
}

// VerifyPaymentRequest is the body of POST /verify-razorpay-payment,
// as posted back by Razorpay Checkout.
type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id" validate:"required"`
	PaymentID string `json:"razorpay_payment_id" validate:"required"`
	Signature string `json:"razorpay_signature" validate:"required"`
}

func (r *VerifyPaymentRequest) Validate() error {
	return validation.Struct(r)
}
