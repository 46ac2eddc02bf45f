package billing

import "time"

// Subscription mirrors the provider's subscription object, upserted on every
// lifecycle event. Each upsert is a pure function of the latest payload so
// reordered deliveries cannot corrupt it (last write wins on status).
type Subscription struct {
	ID                   uint   `gorm:"primaryKey" json:"-"`
	StripeSubscriptionID string `gorm:"uniqueIndex:idx_subs_stripe_subscription_id;not null" json:"subscription_id"`
	StripeCustomerID     string `gorm:"index" json:"customer_id"`
	UserID               string `gorm:"type:uuid;index" json:"user_id"`

	Status             string     `gorm:"type:varchar(30)" json:"status"`
	CurrentPeriodStart *time.Time `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool       `json:"cancel_at_period_end"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
