package middleware

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/storefront-api/internal/database"
)

// Context keys set by AuthMiddleware.
const (
	UserIDKey   = "userID"
	UserRoleKey = "userRole"
)

// TokenVerifier turns a bearer token into a user id.
type TokenVerifier interface {
	ValidateToken(token string) (int64, error)
}

// queryUserRole looks up the role of an existing account.
func queryUserRole(ctx context.Context, db *database.DB, userID int64) (string, error) {
	var role string
	err := db.GetContext(ctx, &role, "SELECT role FROM users WHERE id = ?", userID)
	return role, err
}

// AuthMiddleware verifies the bearer token and that its account still
// exists, then stores the user id and role in the context.
func AuthMiddleware(verifier TokenVerifier, db *database.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. --- Get Authorization Header ---
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token format (must be Bearer)"})
			return
		}

		// 2. --- Validate Token ---
		userID, err := verifier.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		// 3. --- The account must still exist ---
		role, err := queryUserRole(c.Request.Context(), db, userID)
		if errors.Is(err, sql.ErrNoRows) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid user"})
			return
		}
		if err != nil {
			log.Error("role lookup failed", zap.Int64("user_id", userID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Database error checking role"})
			return
		}

		// 4. --- Success ---
		c.Set(UserIDKey, userID)
		c.Set(UserRoleKey, role)
		c.Next()
	}
}
