package handlers

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/storefront-api/internal/models"
)

// GetProfile is the handler for GET /v1/profile/me
// Accounts are issued elsewhere; this only reads the caller's row.
func (h *Handlers) GetProfile(c *gin.Context) {
	var user models.User
	err := h.DB.GetContext(c.Request.Context(), &user,
		"SELECT id, email, name, role, created_at FROM users WHERE id = ?", currentUserID(c))
	if errors.Is(err, sql.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found", "message": "User not found"})
		return
	}
	if err != nil {
		h.Log.Error("profile lookup failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "storage_failure", "message": "Internal server error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}
