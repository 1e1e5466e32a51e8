package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/01moynul/storefront-api/internal/apperr"
	"github.com/01moynul/storefront-api/internal/database"
)

//
// --- Admin: Account Handlers ---
//

// DeleteUser is the handler for DELETE /v1/admin/users/:id
// The user's cart goes with the account; orders stay for audit with user_id nulled.
func (h *Handlers) DeleteUser(c *gin.Context) {
	userID, ok := h.idParam(c, "id")
	if !ok {
		return
	}
	if userID == currentUserID(c) {
		h.respondError(c, apperr.New(apperr.Conflict, "admins cannot delete their own account"))
		return
	}

	result, err := h.DB.ExecContext(c.Request.Context(), "DELETE FROM users WHERE id = ?", userID)
	if err != nil {
		h.respondError(c, database.Classify(err, "delete user"))
		return
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		h.respondError(c, database.Classify(err, "delete user"))
		return
	}
	if rowsAffected == 0 {
		h.respondError(c, apperr.New(apperr.NotFound, "user %d not found", userID))
		return
	}

	h.Log.Info("user deleted", zap.Int64("user_id", userID), zap.Int64("by", currentUserID(c)))
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
