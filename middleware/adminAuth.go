package middleware

import (
	"brandconnect/models"

	"github.com/gin-gonic/gin"
)

// JWTAuthAdminMiddleware must run after JWTAuthMiddleware.
func JWTAuthAdminMiddleware() gin.HandlerFunc {
	return RequireRole(models.RoleAdmin)
}
