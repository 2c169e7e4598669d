package identity

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/jwks"
	"github.com/clerk/clerk-sdk-go/v2/jwt"
	"github.com/pkg/errors"
)

// clerkKeyTTL is how long a fetched JSON Web Key Set is trusted.
const clerkKeyTTL = time.Hour

// ClerkVerifier verifies Clerk session tokens.
//
// Signing keys come from the instance's /jwks endpoint and are cached by
// kid, so a steady stream of tokens costs one Clerk call per hour.
type ClerkVerifier struct {
	jwks *jwks.Client
	keys *keySet[*clerk.JSONWebKey]
}

// NewClerkVerifier returns a verifier that authenticates to the Clerk API
// with secretKey. apiURL overrides the Clerk API base URL when not empty;
// client may be nil.
func NewClerkVerifier(secretKey, apiURL string, client *http.Client) *ClerkVerifier {
	config := &clerk.ClientConfig{}
	config.Key = clerk.String(secretKey)
	config.HTTPClient = client
	if apiURL != "" {
		config.URL = clerk.String(apiURL)
	}

	v := &ClerkVerifier{jwks: jwks.NewClient(config)}
	v.keys = newKeySet(v.fetch, time.Now)

	return v
}

func (v *ClerkVerifier) Name() string {
	return "clerk"
}

func (v *ClerkVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	decoded, err := jwt.Decode(ctx, &jwt.DecodeParams{Token: token})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if decoded.KeyID == "" {
		return nil, fmt.Errorf("%w: token header has no kid", ErrInvalidToken)
	}

	jwk, err := v.keys.get(ctx, decoded.KeyID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, err := jwt.Verify(ctx, &jwt.VerifyParams{Token: token, JWK: jwk})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}

	return &Identity{
		Subject:  claims.Subject,
		Provider: v.Name(),
	}, nil
}

func (v *ClerkVerifier) fetch(ctx context.Context) (map[string]*clerk.JSONWebKey, time.Duration, error) {
	set, err := v.jwks.Get(ctx, &jwks.GetParams{})
	if err != nil {
		return nil, 0, errors.Wrap(err, "fetch clerk jwks")
	}

	keys := make(map[string]*clerk.JSONWebKey, len(set.Keys))
	for _, k := range set.Keys {
		if k != nil && k.KeyID != "" {
			keys[k.KeyID] = k
		}
	}

	return keys, clerkKeyTTL, nil
}
