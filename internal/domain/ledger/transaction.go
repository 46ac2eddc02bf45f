package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	TypeIncome  = "income"
	TypeExpense = "expense"
)

type Transaction struct {
	ID          string          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      string          `gorm:"type:uuid;index:idx_transactions_user_date" json:"user_id"`
	Type        string          `gorm:"type:varchar(10);not null" json:"type"` // income | expense
	Amount      decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"amount"`
	CategoryID  *string         `gorm:"type:uuid" json:"category_id,omitempty"`
	Description string          `json:"description"`
	Date        time.Time       `gorm:"index:idx_transactions_user_date" json:"date"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (t *Transaction) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// ValidType reports whether s is one of the two transaction types.
func ValidType(s string) bool {
	return s == TypeIncome || s == TypeExpense
}
