// Package errs define custom error types and utilities.
//
// Every failure a handler can produce is classified by a Kind, and the
// Kind alone decides the HTTP status. The global error handler consults
// StatusFor so that status codes are never chosen ad hoc in handlers.
package errs

import "net/http"

// Kind is the category of a client-visible failure.
type Kind string

const (
	// KindAuth is a missing or rejected credential.
	KindAuth Kind = "AUTH"

	// KindValidation is a missing required field or an invalid value.
	KindValidation Kind = "VALIDATION"

	// KindBusiness is a well-formed request that failed a business rule,
	// e.g. a payment signature that does not match.
	// It is never an auth failure.
	KindBusiness Kind = "BUSINESS"

	// KindServiceDisabled is an optional integration that was not configured at startup.
	KindServiceDisabled Kind = "SERVICE_DISABLED"

	// KindUpstream is any failure talking to an external provider.
	KindUpstream Kind = "UPSTREAM"

	// KindNotFound is an unknown route.
	KindNotFound Kind = "NOT_FOUND"

	// KindInternal is everything else.
	KindInternal Kind = "INTERNAL"
)

// statusByKind is the single source of truth for kind -> HTTP status.
var statusByKind = map[Kind]int{
	KindAuth:            http.StatusUnauthorized,
	KindValidation:      http.StatusBadRequest,
	KindBusiness:        http.StatusBadRequest,
	KindServiceDisabled: http.StatusServiceUnavailable,
	KindUpstream:        http.StatusInternalServerError,
	KindNotFound:        http.StatusNotFound,
	KindInternal:        http.StatusInternalServerError,
}

// StatusFor returns the HTTP status for a kind.
// Unknown kinds are treated as internal errors.
func StatusFor(kind Kind) int {
	if status, ok := statusByKind[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// InternalServerErrorMessage is the generic message returned for unhandled failures.
const InternalServerErrorMessage = "Internal server error"
