package middleware

import (
	"net/http"

	"brandconnect/models"

	"github.com/gin-gonic/gin"
)

// RequireRole rejects callers whose role claim is not one of roles.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := models.Role(Role(c))
		for _, r := range roles {
			if r == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"code":    "FORBIDDEN",
			"message": "insufficient role",
		})
	}
}
