package ledger

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category struct {
	ID        string `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string `gorm:"type:uuid;index" json:"user_id"`
	Name      string `gorm:"not null" json:"name"`
	Type      string `gorm:"type:varchar(10);not null" json:"type"` // income | expense
	Icon      string `json:"icon"`
	IsDefault bool   `gorm:"not null;default:false" json:"is_default"`

	CreatedAt time.Time `json:"-"`
}

func (c *Category) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}

// DefaultCategories is seeded for every new user. Custom categories beyond
// these are a pro feature.
func DefaultCategories(userID string) []Category {
	defs := []struct {
		name, typ, icon string
	}{
		{"Salary", TypeIncome, "💰"},
		{"Other Income", TypeIncome, "💵"},
		{"Food & Dining", TypeExpense, "🍔"},
		{"Transport", TypeExpense, "🚌"},
		{"Housing", TypeExpense, "🏠"},
		{"Utilities", TypeExpense, "💡"},
		{"Entertainment", TypeExpense, "🎬"},
		{"Health", TypeExpense, "⚕️"},
		{"Shopping", TypeExpense, "🛍️"},
		{"Other", TypeExpense, "📦"},
	}

	out := make([]Category, 0, len(defs))
	for _, d := range defs {
		out = append(out, Category{
			UserID:    userID,
			Name:      d.name,
			Type:      d.typ,
			Icon:      d.icon,
			IsDefault: true,
		})
	}
	return out
}
