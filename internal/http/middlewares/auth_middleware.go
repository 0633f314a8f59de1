package middlewares

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/repairlab/repairhub/internal/domain/user"
)

// Keep these interfaces small so tests can fake them easily.
type TokenVerifier interface {
	Verify(token string) (int64, error)
}

type UserResolver interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
}

type AuthMiddleware struct {
	jwt   TokenVerifier
	users UserResolver
}

func NewAuthMiddleware(jwt TokenVerifier, users UserResolver) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt, users: users}
}

// RequireAuth verifies the bearer token and then resolves the account. A
// token whose account has since been disabled gets a 401: the signature is
// fine but the session no longer maps to a live user.
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, "Missing or invalid Authorization header")
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			abortUnauthorized(c, "Missing or invalid access token")
			return
		}

		userID, err := m.jwt.Verify(raw)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired access token")
			return
		}

		u, err := m.users.GetByID(c.Request.Context(), userID)
		if err != nil {
			abortUnauthorized(c, "Session no longer valid")
			return
		}

		c.Set(CtxUser, u)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{
			"code":    "unauthorized",
			"message": message,
		},
	})
}

// CurrentUser returns the authenticated user stashed by RequireAuth.
func CurrentUser(c *gin.Context) (user.User, bool) {
	v, ok := c.Get(CtxUser)
	if !ok {
		return user.User{}, false
	}

	u, ok := v.(user.User)
	return u, ok
}
