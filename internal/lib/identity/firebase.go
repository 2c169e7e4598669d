package identity

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

// FirebaseCertsURL publishes the x509 certificates that sign Firebase ID tokens.
const FirebaseCertsURL = "https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"

const firebaseIssuerPrefix = "https://securetoken.google.com/"

// KeySource resolves a token's key id to an RSA public key.
type KeySource interface {
	PublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error)
}

type firebaseClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// FirebaseVerifier verifies Firebase Authentication ID tokens.
type FirebaseVerifier struct {
	projectID string
	keys      KeySource
	parser    *jwt.Parser
}

// NewFirebaseVerifier returns a verifier for tokens issued to projectID.
func NewFirebaseVerifier(projectID string, keys KeySource) *FirebaseVerifier {
	return &FirebaseVerifier{
		projectID: projectID,
		keys:      keys,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
			jwt.WithAudience(projectID),
			jwt.WithIssuer(firebaseIssuerPrefix+projectID),
			jwt.WithExpirationRequired(),
			jwt.WithIssuedAt(),
			jwt.WithLeeway(30*time.Second),
		),
	}
}

func (v *FirebaseVerifier) Name() string {
	return "firebase"
}

func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (*Identity, error) {
	claims := &firebaseClaims{}

	_, err := v.parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token header has no kid")
		}
		return v.keys.PublicKey(ctx, kid)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", ErrInvalidToken)
	}

	return &Identity{
		Subject:  claims.Subject,
		Email:    claims.Email,
		Provider: v.Name(),
	}, nil
}

// CertKeySource fetches PEM certificates from a Google-style metadata URL
// ({"kid": "-----BEGIN CERTIFICATE-----..."}) and caches them for as long as
// the response's Cache-Control max-age allows, but never less than a minute.
type CertKeySource struct {
	url    string
	client *http.Client
	now    func() time.Time

	keys *keySet[*rsa.PublicKey]
}

// NewCertKeySource builds a CertKeySource. client may be nil.
func NewCertKeySource(url string, client *http.Client) *CertKeySource {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}

	s := &CertKeySource{
		url:    url,
		client: client,
		now:    time.Now,
	}
	s.keys = newKeySet(s.fetch, func() time.Time { return s.now() })

	return s
}

func (s *CertKeySource) PublicKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	return s.keys.get(ctx, kid)
}

func (s *CertKeySource) fetch(ctx context.Context) (map[string]*rsa.PublicKey, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, 0, errors.Wrap(err, "build certs request")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, 0, errors.Wrap(err, "fetch signing certificates")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, 0, errors.Errorf("fetch signing certificates: status %d", resp.StatusCode)
	}

	var certs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return nil, 0, errors.Wrap(err, "decode signing certificates")
	}

	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pem := range certs {
		key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pem))
		if err != nil {
			return nil, 0, errors.Wrapf(err, "parse certificate %q", kid)
		}
		keys[kid] = key
	}

	return keys, maxAge(resp.Header.Get("Cache-Control")), nil
}

// maxAge returns the max-age directive of a Cache-Control header, or zero.
func maxAge(cacheControl string) time.Duration {
	for _, directive := range strings.Split(cacheControl, ",") {
		name, value, ok := strings.Cut(strings.TrimSpace(directive), "=")
		if !ok || !strings.EqualFold(name, "max-age") {
			continue
		}
		seconds, err := strconv.Atoi(value)
		if err != nil || seconds < 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	return 0
}
