package middlewares

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/geocoder89/webtwist/internal/actorctx"
	"github.com/geocoder89/webtwist/internal/auth"
	"github.com/gin-gonic/gin"
)

// Authenticator resolves an Authorization header to an identity.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (auth.Identity, error)
}

type FailureObserver interface {
	ObserveAuthFailure(code string)
}

type AuthMiddleware struct {
	authn    Authenticator
	failures FailureObserver
	log      *slog.Logger
}

func NewAuthMiddleware(authn Authenticator, failures FailureObserver, log *slog.Logger) *AuthMiddleware {
	if log == nil {
		log = slog.Default()
	}
	return &AuthMiddleware{authn: authn, failures: failures, log: log}
}

var authMessages = map[string]string{
	"missing_token":     "Missing or malformed Authorization header",
	"invalid_token":     "Invalid access token",
	"token_expired":     "Access token has expired",
	"account_not_found": "Account no longer exists",
	"forbidden":         "Admin role required",
}

// RequireAuth is the token verifier. On success the identity is available via
// IdentityFromContext and actorctx on the request context.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := m.authn.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			m.reject(c, err)
			return
		}

		c.Set(CtxIdentity, id)
		c.Request = c.Request.WithContext(actorctx.WithIdentity(c.Request.Context(), id))

		c.Next()
	}
}

func (m *AuthMiddleware) reject(c *gin.Context, err error) {
	if !auth.IsAuthError(err) {
		m.log.ErrorContext(c.Request.Context(), "authenticate failed", "err", err)
		abortWithError(c, http.StatusInternalServerError, "internal_error", "Something went wrong")
		return
	}

	code := auth.Code(err)
	if m.failures != nil {
		m.failures.ObserveAuthFailure(code)
	}

	status := http.StatusUnauthorized
	if code == "forbidden" {
		status = http.StatusForbidden
	}
	abortWithError(c, status, code, authMessages[code])
}

func IdentityFromContext(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(CtxIdentity)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

func AccountIDFromContext(c *gin.Context) (string, bool) {
	id, ok := IdentityFromContext(c)
	if !ok || id.AccountID == "" {
		return "", false
	}
	return id.AccountID, true
}
