// Package razorpay is a minimal client for the Razorpay Orders API and the
// payment signature check used after checkout.
package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"
	"time"

	"github.com/deppfellow/payhost/internal/lib/upstream"
)

// ProviderName labels Razorpay calls in logs and metrics.
const ProviderName = "razorpay"

// OrderRequest is the body of POST /v1/orders.
// Amount is in the currency's minor unit (paise for INR).
type OrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// Order is the subset of the Razorpay order entity this service reads.
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

// Client talks to the Razorpay REST API with key id / secret basic auth.
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	http      *http.Client
}

// NewClient builds a Client. httpClient may be nil, in which case an
// instrumented client with the given timeout is created.
func NewClient(baseURL, keyID, keySecret string, timeout time.Duration, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = upstream.NewHTTPClient(ProviderName, timeout)
	}

	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		keyID:     keyID,
		keySecret: keySecret,
		http:      httpClient,
	}
}

// KeyID is the publishable key the browser checkout needs.
func (c *Client) KeyID() string {
	return c.keyID
}

// CreateOrder creates an order for req.Amount minor units.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	var order Order

	err := upstream.Do(ctx, c.http, upstream.Request{
		Provider:  ProviderName,
		Operation: "create_order",
		Method:    http.MethodPost,
		URL:       c.baseURL + "/v1/orders",
		Body:      req,
		BasicAuth: &[2]string{c.keyID, c.keySecret},
	}, &order)
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// VerifyPaymentSignature reports whether signature is the checkout signature
// for the order/payment pair under this client's key secret.
func (c *Client) VerifyPaymentSignature(orderID, paymentID, signature string) bool {
	return VerifyPaymentSignature(orderID, paymentID, signature, c.keySecret)
}

// Signature returns hex(HMAC-SHA256(secret, orderID + "|" + paymentID)).
func Signature(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyPaymentSignature compares signature with the expected value in constant time.
func VerifyPaymentSignature(orderID, paymentID, signature, secret string) bool {
	expected := Signature(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}
