package errs

import "strings"

// HTTPError is the main custom error type for API responses.
//
// It implements the `error` interface via Error().
// Fields:
//   - Kind: failure category, decides the status.
//   - Code: machine-friendly error code (e.g. "BAD_REQUEST").
//   - Message: human-friendly message, the only text the client sees.
//   - Status: HTTP status code, always StatusFor(Kind).
//
// The optional cause is kept for logging and is never serialized.
type HTTPError struct {
	Kind    Kind   `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`

	cause error
}

// Error makes *HTTPError satisfy the built-in `error` interface.
// It returns the client-facing message; the cause is reachable through Unwrap.
func (e *HTTPError) Error() string {
	return e.Message
}

// Unwrap exposes the underlying cause to errors.Is / errors.As.
func (e *HTTPError) Unwrap() error {
	return e.cause
}

// Cause returns the wrapped internal error, or nil.
func (e *HTTPError) Cause() error {
	return e.cause
}

// Is customizes how errors.Is(...) treats HTTPError.
//
// Important nuance:
// This does NOT compare Kind/Status/etc.
// It only checks whether the other thing is the same *type* (*HTTPError).
func (e *HTTPError) Is(target error) bool {
	_, ok := target.(*HTTPError)

	return ok
}

// WithMessage returns a *copy* of this HTTPError with Message replaced.
func (e *HTTPError) WithMessage(message string) *HTTPError {
	return &HTTPError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: message,
		Status:  e.Status,
		cause:   e.cause,
	}
}

// WithCause returns a *copy* of this HTTPError carrying cause for logging.
func (e *HTTPError) WithCause(cause error) *HTTPError {
	return &HTTPError{
		Kind:    e.Kind,
		Code:    e.Code,
		Message: e.Message,
		Status:  e.Status,
		cause:   cause,
	}
}

// MakeUpperCaseWithUnderscores converts a string into an UPPER_CASE_WITH_UNDERSCORES format.
//
// Example:
//
//	"Bad Request" -> "BAD_REQUEST"
func MakeUpperCaseWithUnderscores(str string) string {
	return strings.ToUpper(strings.ReplaceAll(str, " ", "_"))
}
