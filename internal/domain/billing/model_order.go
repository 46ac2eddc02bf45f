package billing

import "time"

// Order is the append-only record of one completed checkout. Keyed by the
// Stripe session id so a redelivered checkout.session.completed event can
// never create a second row.
type Order struct {
	ID              uint   `gorm:"primaryKey" json:"-"`
	UserID          string `gorm:"type:uuid;index" json:"user_id"`
	StripeSessionID string `gorm:"uniqueIndex:idx_orders_stripe_session_id;not null" json:"order_id"`
	PaymentIntentID *string `gorm:"column:payment_intent_id" json:"payment_intent_id,omitempty"`

	AmountTotal   int64  `json:"amount_total"` // minor units, as Stripe reports it
	Currency      string `gorm:"type:varchar(10)" json:"currency"`
	PaymentStatus string `gorm:"type:varchar(20)" json:"payment_status"`

	OrderDate time.Time `json:"order_date"`
	CreatedAt time.Time `json:"-"`
}
