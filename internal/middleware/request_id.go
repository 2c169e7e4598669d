package middleware

import (
	"github.com/deppfellow/payhost/internal/lib/upstream"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	// RequestIDHeader carries the correlation id in and out of the service.
	RequestIDHeader = upstream.RequestIDHeader

	// RequestIDKey is the Echo context key holding the id.
	RequestIDKey = "request_id"

	// maxRequestIDLength bounds caller-supplied ids before they reach logs
	// and provider requests.
	maxRequestIDLength = 128
)

// RequestID assigns each request a correlation id.
//
// A caller-supplied X-Request-ID is kept when it is a sane length, otherwise
// a UUID is generated. The id is echoed on the response, stored in the Echo
// context for logging and put into the request context, from where the
// provider clients forward it on outbound calls.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			requestID := c.Request().Header.Get(RequestIDHeader)
			if requestID == "" || len(requestID) > maxRequestIDLength {
				requestID = uuid.New().String()
			}

			c.Set(RequestIDKey, requestID)
			c.Response().Header().Set(RequestIDHeader, requestID)

			req := c.Request()
			c.SetRequest(req.WithContext(upstream.WithRequestID(req.Context(), requestID)))

			return next(c)
		}
	}
}

// GetRequestID returns the request's correlation id, or "".
func GetRequestID(c echo.Context) string {
	if requestID, ok := c.Get(RequestIDKey).(string); ok {
		return requestID
	}
	return ""
}
