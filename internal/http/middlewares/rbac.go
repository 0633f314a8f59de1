package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (m *AuthMiddleware) RequireRole(required string) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := CurrentUser(c)

		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing identity context",
				},
			})
			return
		}
		if u.Role != required {
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
