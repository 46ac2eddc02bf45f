package users

import (
	"net/http"
	"time"

	"fintrack-app/internal/domain/billing"
	"fintrack-app/internal/domain/prefs"
	"fintrack-app/internal/domain/users"
	stripeinfra "fintrack-app/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// GetCurrentUser returns the caller's profile, preferences and the feature
// gate outcome for their tier in one payload.
func (h *Handler) GetCurrentUser(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var user users.User
	if err := h.db.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var p prefs.UserPreferences
	if err := h.db.Where("user_id = ?", userID).First(&p).Error; err != nil {
		p = prefs.Defaults(userID)
	}

	c.JSON(http.StatusOK, gin.H{
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
			"name":  user.Name,
			"role":  user.Role,
		},
		"preferences":  p,
		"features":     prefs.Features(p.PlanTier),
		"subscription": h.buildSubscription(p),
	})
}

type subscriptionDTO struct {
	Status               string     `json:"status"`
	StripeSubscriptionID string     `json:"subscription_id"`
	CurrentPeriodEnd     *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd    bool       `json:"cancel_at_period_end"`
}

// buildSubscription resolves the caller's latest subscription record, with
// the raw provider status folded into the working set. Nil when the user
// never subscribed.
func (h *Handler) buildSubscription(p prefs.UserPreferences) *subscriptionDTO {
	if p.StripeSubscriptionID == nil || *p.StripeSubscriptionID == "" {
		return nil
	}

	var sub billing.Subscription
	if err := h.db.Where("stripe_subscription_id = ?", *p.StripeSubscriptionID).
		First(&sub).Error; err != nil {
		return nil
	}

	return &subscriptionDTO{
		Status:               stripeinfra.NormalizeStatus(sub.Status),
		StripeSubscriptionID: sub.StripeSubscriptionID,
		CurrentPeriodEnd:     sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
	}
}
