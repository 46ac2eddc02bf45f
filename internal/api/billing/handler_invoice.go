package billing

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetInvoice streams the Stripe-hosted invoice PDF for one of the caller's
// payments as a download.
func (h *Handler) GetInvoice(c *gin.Context) {
	var body struct {
		PaymentIntentID string `json:"paymentIntentId"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.PaymentIntentID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid paymentIntentId"})
		return
	}

	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	// Only serve invoices for payments that belong to the caller.
	var count int64
	if err := h.db.Table("orders").
		Where("user_id = ? AND payment_intent_id = ?", userID, body.PaymentIntentID).
		Count(&count).Error; err != nil || count == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Payment not found"})
		return
	}

	pdf, err := h.gateway.InvoicePDF(body.PaymentIntentID)
	if err != nil {
		h.log.Error().Err(err).Str("payment_intent_id", body.PaymentIntentID).Msg("invoice fetch failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to retrieve invoice"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "invoice-"+body.PaymentIntentID+".pdf"))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
