package billing

import (
	"net/http"

	"fintrack-app/internal/domain/billing"

	"github.com/gin-gonic/gin"
)

// GetPaymentHistory lists the caller's completed checkouts, newest first.
func (h *Handler) GetPaymentHistory(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	orders := []billing.Order{}
	if err := h.db.
		Where("user_id = ?", userID).
		Order("order_date DESC").
		Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}

	c.JSON(http.StatusOK, orders)
}
