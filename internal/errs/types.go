package errs

import (
	"net/http"
)

// New builds an HTTPError of the given kind.
// The status is always looked up from the kind table.
func New(kind Kind, message string) *HTTPError {
	status := StatusFor(kind)

	return &HTTPError{
		Kind:    kind,
		Code:    MakeUpperCaseWithUnderscores(http.StatusText(status)),
		Message: message,
		Status:  status,
	}
}

// NewUnauthorizedError creates a 401 Unauthorized HTTPError.
func NewUnauthorizedError(message string) *HTTPError {
	return New(KindAuth, message)
}

// NewValidationError creates a 400 error for a missing or invalid request value.
func NewValidationError(message string) *HTTPError {
	return New(KindValidation, message)
}

// NewBusinessError creates a 400 error for a request that failed a business rule.
func NewBusinessError(message string) *HTTPError {
	return New(KindBusiness, message)
}

// NewServiceDisabledError creates a 503 error for an integration that is not configured.
func NewServiceDisabledError(message string) *HTTPError {
	return New(KindServiceDisabled, message)
}

// NewUpstreamError creates a 500 error for a failed provider call.
//
// message is what the client sees; cause carries the provider detail and
// only ends up in the logs.
func NewUpstreamError(message string, cause error) *HTTPError {
	return New(KindUpstream, message).WithCause(cause)
}

// NewNotFoundError creates a 404 Not Found HTTPError.
func NewNotFoundError(message string) *HTTPError {
	return New(KindNotFound, message)
}

// NewInternalServerError creates a 500 error with the generic message.
// Clients never see the real internal error, only the logs do.
func NewInternalServerError(cause error) *HTTPError {
	return New(KindInternal, InternalServerErrorMessage).WithCause(cause)
}

// MissingFieldError is the validation error for an absent required field.
func MissingFieldError(field string) *HTTPError {
	return NewValidationError("Missing required field: " + field)
}

// InvalidFieldError is the validation error for a field that is present but malformed.
func InvalidFieldError(field string) *HTTPError {
	return NewValidationError("Invalid field: " + field)
}
