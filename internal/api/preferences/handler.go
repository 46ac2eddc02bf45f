package preferences

import (
	"net/http"

	"fintrack-app/internal/domain/prefs"
	"fintrack-app/internal/infra/notify"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	db  *gorm.DB
	hub *notify.Hub
}

func NewHandler(db *gorm.DB, hub *notify.Hub) *Handler {
	return &Handler{db: db, hub: hub}
}

// GetPreferences is the refresh target of the client reconciliation loop.
func (h *Handler) GetPreferences(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	var p prefs.UserPreferences
	if err := h.db.Where("user_id = ?", userID).First(&p).Error; err != nil {
		// Row should exist from signup; fall back to defaults if it does not.
		p = prefs.Defaults(userID)
	}

	c.JSON(http.StatusOK, p)
}

// UpdatePreferences accepts the user-editable display fields only. Billing
// fields (plan tier, Stripe ids) are owned by the webhook reconciler, so the
// update is scoped to the display columns.
func (h *Handler) UpdatePreferences(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}

	var body struct {
		Currency string `json:"currency"`
		Locale   string `json:"locale"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	updates := map[string]interface{}{}
	if body.Currency != "" {
		updates["currency"] = body.Currency
	}
	if body.Locale != "" {
		updates["locale"] = body.Locale
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Nothing to update"})
		return
	}

	res := h.db.Model(&prefs.UserPreferences{}).Where("user_id = ?", userID).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update preferences"})
		return
	}
	if res.RowsAffected == 0 {
		row := prefs.Defaults(userID)
		if body.Currency != "" {
			row.Currency = body.Currency
		}
		if body.Locale != "" {
			row.Locale = body.Locale
		}
		if err := h.db.Create(&row).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update preferences"})
			return
		}
	}

	var p prefs.UserPreferences
	if err := h.db.Where("user_id = ?", userID).First(&p).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load preferences"})
		return
	}

	h.hub.Publish(p)
	c.JSON(http.StatusOK, p)
}
