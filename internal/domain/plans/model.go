package plans

import "time"

// Plan is the allow-list of purchasable prices. Synced from Stripe by the
// admin sync endpoint; checkout refuses any price id not present here.
type Plan struct {
	ID            uint   `gorm:"primaryKey" json:"id"`
	Name          string `json:"name"`
	StripePriceID string `gorm:"column:stripe_price_id;not null;uniqueIndex:idx_plans_stripe_price_id" json:"price_id"`
	Tier          string `gorm:"type:varchar(10)" json:"tier"` // "free" | "pro"
	Interval      string `gorm:"type:varchar(10)" json:"interval"`
	UnitAmount    int64  `json:"unit_amount"` // minor units
	Currency      string `gorm:"type:varchar(10)" json:"currency"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
