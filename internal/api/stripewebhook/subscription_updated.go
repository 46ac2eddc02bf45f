package stripewebhooks

import (
	"errors"
	"fmt"
	"time"

	"fintrack-app/internal/domain/billing"
	"fintrack-app/internal/domain/prefs"
	"fintrack-app/internal/infra/metrics"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v75"
	"gorm.io/gorm/clause"
)

// handleSubscriptionUpdated applies the latest subscription status. The user
// is resolved through stripe_customer_id since this event carries no session
// metadata. The write is a pure function of this payload; an out-of-order
// redelivery just re-applies whatever status Stripe reported last.
func (h *Handler) handleSubscriptionUpdated(log zerolog.Logger, sub *stripe.Subscription) error {
	if sub.ID == "" || sub.Customer == nil || sub.Customer.ID == "" {
		return errors.New("subscription missing id or customer")
	}
	customerID := sub.Customer.ID

	var p prefs.UserPreferences
	if err := h.db.Where("stripe_customer_id = ?", customerID).First(&p).Error; err != nil {
		return fmt.Errorf("no user for stripe customer %s: %w", customerID, err)
	}

	if err := h.upsertSubscriptionRecord(p.UserID, sub); err != nil {
		return err
	}

	tier := prefs.TierForSubscriptionStatus(string(sub.Status))
	if err := h.db.Model(&prefs.UserPreferences{}).
		Where("user_id = ?", p.UserID).
		Updates(map[string]interface{}{
			"plan_tier":              tier,
			"stripe_subscription_id": sub.ID,
		}).Error; err != nil {
		return fmt.Errorf("update preferences for user %s: %w", p.UserID, err)
	}

	metrics.PlanChanges.WithLabelValues(tier).Inc()
	h.publishPreferences(p.UserID)

	log.Info().
		Str("user_id", p.UserID).
		Str("subscription_id", sub.ID).
		Str("status", string(sub.Status)).
		Str("plan_tier", tier).
		Msg("subscription updated")
	return nil
}

func (h *Handler) upsertSubscriptionRecord(userID string, sub *stripe.Subscription) error {
	rec := billing.Subscription{
		StripeSubscriptionID: sub.ID,
		StripeCustomerID:     sub.Customer.ID,
		UserID:               userID,
		Status:               string(sub.Status),
		CancelAtPeriodEnd:    sub.CancelAtPeriodEnd,
	}
	if sub.CurrentPeriodStart > 0 {
		t := time.Unix(sub.CurrentPeriodStart, 0).UTC()
		rec.CurrentPeriodStart = &t
	}
	if sub.CurrentPeriodEnd > 0 {
		t := time.Unix(sub.CurrentPeriodEnd, 0).UTC()
		rec.CurrentPeriodEnd = &t
	}

	if err := h.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "stripe_subscription_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"status", "current_period_start", "current_period_end", "cancel_at_period_end", "user_id", "stripe_customer_id",
		}),
	}).Create(&rec).Error; err != nil {
		return fmt.Errorf("upsert subscription %s: %w", sub.ID, err)
	}
	return nil
}
