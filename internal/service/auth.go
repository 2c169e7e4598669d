package service

import (
	"context"
	"fmt"

	"github.com/deppfellow/payhost/internal/config"
	"github.com/deppfellow/payhost/internal/lib/identity"
	"github.com/deppfellow/payhost/internal/lib/upstream"
	"github.com/deppfellow/payhost/internal/server"
)

// AuthService verifies caller tokens with the configured identity provider.
type AuthService struct {
	server   *server.Server
	verifier identity.Verifier
}

// NewAuthService picks the verifier named by auth.provider.
func NewAuthService(s *server.Server) (*AuthService, error) {
	cfg := s.Config.Auth

	timeout := s.Config.Outbound.Timeout

	var verifier identity.Verifier
	switch cfg.Provider {
	case config.AuthProviderClerk:
		verifier = identity.NewClerkVerifier(cfg.SecretKey, cfg.ClerkAPIURL, upstream.NewHTTPClient("clerk", timeout))
	case config.AuthProviderFirebase:
		certsURL := cfg.CertsURL
		if certsURL == "" {
			certsURL = identity.FirebaseCertsURL
		}
		keys := identity.NewCertKeySource(certsURL, upstream.NewHTTPClient("firebase", timeout))
		verifier = identity.NewFirebaseVerifier(cfg.FirebaseProjectID, keys)
	default:
		return nil, fmt.Errorf("unsupported auth provider %q", cfg.Provider)
	}

	return NewAuthServiceWithVerifier(s, verifier), nil
}

// NewAuthServiceWithVerifier wraps an existing verifier.
func NewAuthServiceWithVerifier(s *server.Server, verifier identity.Verifier) *AuthService {
	return &AuthService{
		server:   s,
		verifier: verifier,
	}
}

// Provider is the name of the active identity provider.
func (a *AuthService) Provider() string {
	return a.verifier.Name()
}

// Authenticate verifies token and returns the caller's identity.
// Any error means the token must be rejected.
func (a *AuthService) Authenticate(ctx context.Context, token string) (*identity.Identity, error) {
	return a.verifier.Verify(ctx, token)
}
