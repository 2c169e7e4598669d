// Package upstream holds the plumbing shared by every external provider client:
// an instrumented *http.Client, JSON request/response handling and the
// Error type that carries provider detail into the logs (never to callers).
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/deppfellow/payhost/internal/metrics"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/tidwall/gjson"
)

// RequestIDHeader carries the inbound request id on every provider call so
// provider-side logs can be matched with ours.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID returns a copy of ctx that carries the request id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request id stored by WithRequestID, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// maxErrorBody caps how much of a failed response body is kept for logging.
const maxErrorBody = 4 << 10

// detailPaths are the places providers put a human-readable failure reason.
// Razorpay: {"error":{"code","description"}}; Heroku: {"id","message"}.
var detailPaths = []string{"error.description", "message", "error.message", "error"}

// Error is a failed provider call. It is logged in full and mapped to a
// generic message before it reaches the client.
type Error struct {
	Provider   string
	Operation  string
	StatusCode int
	Detail     string
	Body       []byte
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Provider, e.Operation, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s: status %d", e.Provider, e.Operation, e.StatusCode)
}

// NewHTTPClient returns an *http.Client for one provider.
//
// Every request is bounded by timeout, counted in Prometheus and, when
// New Relic is enabled, recorded as an external segment of the current
// transaction (taken from the request context).
func NewHTTPClient(provider string, timeout time.Duration) *http.Client {
	transport := metrics.InstrumentRoundTripper(provider, http.DefaultTransport)

	return &http.Client{
		Timeout:   timeout,
		Transport: newrelic.NewRoundTripper(transport),
	}
}

// Request describes one JSON call to a provider.
type Request struct {
	Provider  string
	Operation string
	Method    string
	URL       string
	Header    http.Header
	Body      any

	// BasicAuth, when set, is sent as HTTP basic credentials.
	BasicAuth *[2]string
}

// Do performs the request and decodes a 2xx JSON body into out (which may be nil).
// Non-2xx responses become *Error; transport failures are wrapped with a stack.
func Do(ctx context.Context, client *http.Client, r Request, out any) error {
	var body io.Reader
	if r.Body != nil {
		payload, err := json.Marshal(r.Body)
		if err != nil {
			return errors.Wrapf(err, "%s %s: encode request", r.Provider, r.Operation)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.URL, body)
	if err != nil {
		return errors.Wrapf(err, "%s %s: build request", r.Provider, r.Operation)
	}

	for key, values := range r.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if r.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := RequestIDFromContext(ctx); id != "" && req.Header.Get(RequestIDHeader) == "" {
		req.Header.Set(RequestIDHeader, id)
	}
	if r.BasicAuth != nil {
		req.SetBasicAuth(r.BasicAuth[0], r.BasicAuth[1])
	}

	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", r.Provider, r.Operation)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &Error{
			Provider:   r.Provider,
			Operation:  r.Operation,
			StatusCode: resp.StatusCode,
			Detail:     ExtractDetail(raw),
			Body:       raw,
		}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "%s %s: decode response", r.Provider, r.Operation)
	}

	return nil
}

// ExtractDetail pulls the provider's error reason out of a JSON error body.
// Non-JSON bodies are returned verbatim (trimmed by the caller's limit).
func ExtractDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if !gjson.ValidBytes(body) {
		return string(body)
	}

	for _, result := range gjson.GetManyBytes(body, detailPaths...) {
		if result.Type == gjson.String && result.Str != "" {
			return result.Str
		}
	}

	return ""
}
