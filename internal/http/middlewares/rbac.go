package middlewares

import (
	"github.com/geocoder89/webtwist/internal/auth"
	"github.com/geocoder89/webtwist/internal/domain/account"
	"github.com/gin-gonic/gin"
)

// RequireRole is the role gate. It must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(required account.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFromContext(c)
		if !ok {
			m.reject(c, auth.ErrMissingToken)
			return
		}

		if err := auth.Authorize(id, required); err != nil {
			m.reject(c, err)
			return
		}
		c.Next()
	}
}
