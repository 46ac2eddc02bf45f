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

// handleCheckoutSessionCompleted flips the buyer to pro and records the
// order. Everything it needs is on the session payload; a missing user_id in
// the metadata is fatal, since silently skipping it would strand a paying
// user on the free tier.
func (h *Handler) handleCheckoutSessionCompleted(log zerolog.Logger, session *stripe.CheckoutSession) error {
	if session.ID == "" {
		return errors.New("checkout session missing id")
	}

	userID := ""
	if session.Metadata != nil {
		userID = session.Metadata["user_id"]
	}
	if userID == "" {
		userID = session.ClientReferenceID
	}
	if userID == "" {
		return errors.New("missing user_id (metadata.user_id or client_reference_id)")
	}

	customerID := ""
	if session.Customer != nil {
		customerID = session.Customer.ID
	}
	if customerID == "" {
		return errors.New("checkout session missing customer")
	}

	subscriptionID := ""
	if session.Subscription != nil {
		subscriptionID = session.Subscription.ID
	}

	// Merge-upsert: only billing fields are assigned on conflict, so a
	// concurrent currency/locale edit on the same row is never clobbered.
	row := prefs.Defaults(userID)
	row.PlanTier = prefs.TierPro
	row.StripeCustomerID = &customerID
	if subscriptionID != "" {
		row.StripeSubscriptionID = &subscriptionID
	}

	assignments := map[string]interface{}{
		"plan_tier":          prefs.TierPro,
		"stripe_customer_id": customerID,
	}
	if subscriptionID != "" {
		assignments["stripe_subscription_id"] = subscriptionID
	}

	if err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.Assignments(assignments),
	}).Create(&row).Error; err != nil {
		return fmt.Errorf("upsert preferences for user %s: %w", userID, err)
	}

	// A session completes exactly once; the unique index on the session id
	// turns a redelivery into a no-op instead of a duplicate order row.
	order := billing.Order{
		UserID:          userID,
		StripeSessionID: session.ID,
		AmountTotal:     session.AmountTotal,
		Currency:        string(session.Currency),
		PaymentStatus:   string(session.PaymentStatus),
		OrderDate:       time.Now().UTC(),
	}
	if session.PaymentIntent != nil && session.PaymentIntent.ID != "" {
		pi := session.PaymentIntent.ID
		order.PaymentIntentID = &pi
	}

	if err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stripe_session_id"}},
		DoNothing: true,
	}).Create(&order).Error; err != nil {
		return fmt.Errorf("record order for session %s: %w", session.ID, err)
	}

	metrics.PlanChanges.WithLabelValues(prefs.TierPro).Inc()
	h.publishPreferences(userID)

	log.Info().
		Str("user_id", userID).
		Str("session_id", session.ID).
		Str("customer_id", customerID).
		Msg("checkout completed, user upgraded to pro")
	return nil
}

// publishPreferences pushes the current row to websocket subscribers so the
// client reconciliation loop converges ahead of its next poll.
func (h *Handler) publishPreferences(userID string) {
	if h.hub == nil {
		return
	}
	var p prefs.UserPreferences
	if err := h.db.Where("user_id = ?", userID).First(&p).Error; err != nil {
		return
	}
	h.hub.Publish(p)
}
