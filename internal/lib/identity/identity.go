// Package identity verifies caller bearer tokens against an external
// identity provider and carries the resulting identity through the request context.
package identity

import (
	"context"
	"errors"
)

// ErrInvalidToken is returned (possibly wrapped) for any token the provider rejects.
var ErrInvalidToken = errors.New("invalid identity token")

// Identity is the caller behind a verified token. Only Subject is guaranteed.
type Identity struct {
	Subject  string
	Email    string
	Provider string
}

// Verifier checks a raw bearer token.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)

	// Name identifies the provider in logs and health output.
	Name() string
}

type contextKey struct{}

// NewContext returns a copy of ctx carrying id.
func NewContext(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

// FromContext returns the identity stored by NewContext, if any.
func FromContext(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(contextKey{}).(*Identity)
	return id, ok && id != nil
}

// SubjectFromContext returns the caller's subject id or "".
func SubjectFromContext(ctx context.Context) string {
	if id, ok := FromContext(ctx); ok {
		return id.Subject
	}
	return ""
}
