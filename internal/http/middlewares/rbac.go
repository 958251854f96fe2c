package middlewares

import (
	"context"
	"net/http"
	"time"

	"github.com/farhan-labs/mobicash/internal/config"
	"github.com/farhan-labs/mobicash/internal/domain/user"
	"github.com/gin-gonic/gin"
)

// The token carries only the user id, so role checks need a lookup.
type RoleReader interface {
	GetByID(ctx context.Context, id string) (user.User, error)
}

// RequireRole runs after RequireAuth and gates the route on the caller's
// current role in storage, not a role captured at token issuance.
func (m *AuthMiddleware) RequireRole(users RoleReader, required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := UserIDFromContext(c)

		if !ok || id == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthenticated",
					"message": "Missing identity context",
				},
			})
			return
		}

		cctx, cancel := config.WithTimeout(2 * time.Second)
		defer cancel()

		u, err := users.GetByID(cctx, id)

		if err != nil || u.Role != required {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": gin.H{
					"code":    "forbidden",
					"message": "Insufficient role",
				},
			})
			return
		}
		c.Next()
	}
}
