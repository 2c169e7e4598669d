package middleware

import (
	"strings"
	"time"

	"github.com/deppfellow/payhost/internal/errs"
	"github.com/deppfellow/payhost/internal/lib/identity"
	"github.com/deppfellow/payhost/internal/server"
	"github.com/deppfellow/payhost/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
)

const (
	bearerPrefix = "Bearer "

	NoTokenMessage      = "Unauthorized: No token provided"
	InvalidTokenMessage = "Unauthorized: Invalid token"
)

// AuthMiddleware holds the app Server and the AuthService that verifies tokens.
type AuthMiddleware struct {
	server *server.Server
	auth   *service.AuthService
}

// NewAuthMiddleware constructs an AuthMiddleware.
func NewAuthMiddleware(s *server.Server, auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
		auth:   auth,
	}
}

// RequireAuth is an Echo middleware that rejects requests without a valid bearer token.
//
//  1. A missing header, a header without the "Bearer " prefix or an empty
//     token fails with 401 before the identity provider is called.
//  2. The token is verified with the configured provider; any failure is 401.
//  3. On success the identity goes into the request context, the subject id
//     into the Echo context, and the request logger gains user_id.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		logger := GetLogger(c)

		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, bearerPrefix)
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			logger.Warn().
				Str("function", "RequireAuth").
				Msg("unauthorized request: no token provided")

			auth.recordFailure(c, "missing_token")

			return errs.NewUnauthorizedError(NoTokenMessage)
		}

		id, err := auth.auth.Authenticate(c.Request().Context(), token)
		if err != nil {
			logger.Warn().
				Err(err).
				Str("function", "RequireAuth").
				Str("provider", auth.auth.Provider()).
				Dur("duration", time.Since(start)).
				Msg("token verification failed")

			auth.recordFailure(c, "invalid_token")

			return errs.NewUnauthorizedError(InvalidTokenMessage).WithCause(err)
		}

		c.Set(UserIDKey, id.Subject)

		userLogger := logger.With().Str("user_id", id.Subject).Logger()
		c.SetRequest(c.Request().WithContext(identity.NewContext(c.Request().Context(), id)))
		setLogger(c, userLogger)

		if txn := newrelic.FromContext(c.Request().Context()); txn != nil {
			txn.AddAttribute("user.id", id.Subject)
		}

		userLogger.Debug().
			Str("function", "RequireAuth").
			Str("provider", id.Provider).
			Dur("duration", time.Since(start)).
			Msg("user authenticated")

		return next(c)
	}
}

func (auth *AuthMiddleware) recordFailure(c echo.Context, reason string) {
	if app := auth.server.LoggerService.GetApplication(); app != nil {
		app.RecordCustomEvent("AuthFailure", map[string]any{
			"reason":   reason,
			"route":    c.Path(),
			"provider": auth.auth.Provider(),
		})
	}
}
