package analytics

import (
	"net/http"
	"time"

	"fintrack-app/internal/domain/ledger"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type categoryTotal struct {
	CategoryID string          `json:"category_id"`
	Total      decimal.Decimal `json:"total"`
}

// Summary returns income/expense/net totals plus per-category expense totals
// for an optional month filter.
func (h *Handler) Summary(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	q := h.db.Where("user_id = ?", userID)
	if month := c.Query("month"); month != "" {
		if !ledger.ValidMonth(month) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month, expected YYYY-MM"})
			return
		}
		start, _ := time.Parse("2006-01", month)
		q = q.Where("date >= ? AND date < ?", start, start.AddDate(0, 1, 0))
	}

	txs := []ledger.Transaction{}
	if err := q.Find(&txs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transactions"})
		return
	}

	income := decimal.Zero
	expenses := decimal.Zero
	perCategory := map[string]decimal.Decimal{}
	for _, tx := range txs {
		switch tx.Type {
		case ledger.TypeIncome:
			income = income.Add(tx.Amount)
		case ledger.TypeExpense:
			expenses = expenses.Add(tx.Amount)
			if tx.CategoryID != nil {
				perCategory[*tx.CategoryID] = perCategory[*tx.CategoryID].Add(tx.Amount)
			}
		}
	}

	byCategory := make([]categoryTotal, 0, len(perCategory))
	for id, total := range perCategory {
		byCategory = append(byCategory, categoryTotal{CategoryID: id, Total: total})
	}

	c.JSON(http.StatusOK, gin.H{
		"total_income":   income,
		"total_expenses": expenses,
		"balance":        income.Sub(expenses),
		"by_category":    byCategory,
	})
}

// Trend returns a 12-month income/expense breakdown. The route sits behind
// the advancedAnalytics feature guard.
func (h *Handler) Trend(c *gin.Context) {
	userID := c.GetString("user_id")

	now := time.Now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -11, 0)

	txs := []ledger.Transaction{}
	if err := h.db.Where("user_id = ? AND date >= ?", userID, start).Find(&txs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transactions"})
		return
	}

	type monthTotals struct {
		Month    string          `json:"month"`
		Income   decimal.Decimal `json:"income"`
		Expenses decimal.Decimal `json:"expenses"`
	}

	buckets := make([]monthTotals, 12)
	index := map[string]int{}
	for i := 0; i < 12; i++ {
		key := start.AddDate(0, i, 0).Format("2006-01")
		buckets[i] = monthTotals{Month: key, Income: decimal.Zero, Expenses: decimal.Zero}
		index[key] = i
	}

	for _, tx := range txs {
		i, ok := index[tx.Date.UTC().Format("2006-01")]
		if !ok {
			continue
		}
		switch tx.Type {
		case ledger.TypeIncome:
			buckets[i].Income = buckets[i].Income.Add(tx.Amount)
		case ledger.TypeExpense:
			buckets[i].Expenses = buckets[i].Expenses.Add(tx.Amount)
		}
	}

	c.JSON(http.StatusOK, gin.H{"months": buckets})
}
