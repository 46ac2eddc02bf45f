package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Budget caps spending for one category in one calendar month.
type Budget struct {
	ID         string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     string          `gorm:"type:uuid;uniqueIndex:idx_budgets_user_category_month" json:"user_id"`
	CategoryID string          `gorm:"type:uuid;uniqueIndex:idx_budgets_user_category_month" json:"category_id"`
	Month      string          `gorm:"type:varchar(7);uniqueIndex:idx_budgets_user_category_month" json:"month"` // "2026-09"
	Amount     decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (b *Budget) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// ValidMonth checks the "YYYY-MM" month key format.
func ValidMonth(s string) bool {
	_, err := time.Parse("2006-01", s)
	return err == nil
}
