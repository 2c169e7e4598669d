// Package validation binds request data and validates it.
//
// Request types declare their rules with go-playground/validator struct
// tags and implement Validatable. The first failing field is reported to
// the client by its JSON name:
//
//	missing (required tag)  -> "Missing required field: <name>"
//	anything else           -> "Invalid field: <name>"
//
// A field is missing when it is absent, null or an empty string. false
// and 0 are present values; request types use pointer fields where that
// distinction matters.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/deppfellow/payhost/internal/errs"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// InvalidBodyMessage is returned when the body cannot be decoded.
const InvalidBodyMessage = "Invalid request body"

// Validatable is implemented by request payload types that know how to validate themselves.
type Validatable interface {
	Validate() error
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by the name the client sent, not the Go field name.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "param", "query"} {
			name, _, _ := strings.Cut(fld.Tag.Get(tag), ",")
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	return v
}

// Struct validates s with its struct tags and converts the first failure
// into a client-facing *errs.HTTPError.
func Struct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		// InvalidValidationError: a programming error, not bad input.
		return errs.NewInternalServerError(err)
	}

	first := validationErrors[0]
	if first.Tag() == "required" {
		return errs.MissingFieldError(first.Field())
	}

	return errs.InvalidFieldError(first.Field())
}

// BindAndValidate binds request data (path params, query and JSON body)
// into payload and validates it.
//
// payload must be a pointer so echo can populate it.
func BindAndValidate(c echo.Context, payload Validatable) error {
	if err := c.Bind(payload); err != nil {
		return errs.NewValidationError(InvalidBodyMessage).WithCause(err)
	}

	if err := payload.Validate(); err != nil {
		var httpErr *errs.HTTPError
		if errors.As(err, &httpErr) {
			return httpErr
		}
		return errs.NewValidationError(InvalidBodyMessage).WithCause(err)
	}

	return nil
}
