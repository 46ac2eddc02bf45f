package stripewebhooks

import (
	"errors"
	"fmt"

	"fintrack-app/internal/domain/prefs"
	"fintrack-app/internal/infra/metrics"

	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v75"
)

// handleSubscriptionDeleted forces the user back to the free tier and clears
// the subscription pointer. The customer id stays: the Stripe customer
// record outlives the subscription.
func (h *Handler) handleSubscriptionDeleted(log zerolog.Logger, sub *stripe.Subscription) error {
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

	if err := h.db.Model(&prefs.UserPreferences{}).
		Where("user_id = ?", p.UserID).
		Updates(map[string]interface{}{
			"plan_tier":              prefs.TierFree,
			"stripe_subscription_id": nil,
		}).Error; err != nil {
		return fmt.Errorf("downgrade user %s: %w", p.UserID, err)
	}

	metrics.PlanChanges.WithLabelValues(prefs.TierFree).Inc()
	h.publishPreferences(p.UserID)

	log.Info().
		Str("user_id", p.UserID).
		Str("subscription_id", sub.ID).
		Msg("subscription deleted, user downgraded to free")
	return nil
}
