package prefs

import "time"

// UserPreferences is the single row per user that billing webhooks and the
// client both write to. The two writers touch disjoint fields: the client
// edits currency/locale, billing events edit plan_tier and the stripe ids.
// All writes must be field merges, never whole-row saves.
type UserPreferences struct {
	UserID   string `gorm:"type:uuid;primaryKey;column:user_id" json:"user_id"`
	PlanTier string `gorm:"type:varchar(10);not null;default:'free'" json:"plan_tier"`
	Currency string `gorm:"type:varchar(10);not null;default:'USD'" json:"currency"`
	Locale   string `gorm:"type:varchar(20);not null;default:'en-US'" json:"locale"`

	StripeCustomerID     *string `gorm:"column:stripe_customer_id;uniqueIndex:idx_prefs_stripe_customer_id" json:"stripe_customer_id,omitempty"`
	StripeSubscriptionID *string `gorm:"column:stripe_subscription_id" json:"stripe_subscription_id,omitempty"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (UserPreferences) TableName() string {
	return "user_preferences"
}

// Defaults returns the row created at signup.
func Defaults(userID string) UserPreferences {
	return UserPreferences{
		UserID:   userID,
		PlanTier: TierFree,
		Currency: "USD",
		Locale:   "en-US",
	}
}
