package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/storefront-api/internal/models"
)

// AdminMiddleware must run after AuthMiddleware. It lets admins through.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(UserIDKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User ID not found in context (AuthMiddleware must run first)"})
			return
		}
		if c.GetString(UserRoleKey) != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Access denied: Admin role required"})
			return
		}
		c.Next()
	}
}
