package transactions

import (
	"errors"
	"net/http"
	"time"

	"fintrack-app/internal/domain/ledger"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// FreeTierMonthlyLimit caps how many transactions a free-tier user can log
// per calendar month. Pro removes the cap (unlimitedTransactions).
const FreeTierMonthlyLimit = 100

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type transactionInput struct {
	Type        string          `json:"type" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	CategoryID  *string         `json:"category_id"`
	Description string          `json:"description"`
	Date        *time.Time      `json:"date"`
}

func (h *Handler) List(c *gin.Context) {
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
	if err := q.Order("date DESC").Find(&txs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load transactions"})
		return
	}
	c.JSON(http.StatusOK, txs)
}

func (h *Handler) Create(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input transactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !ledger.ValidType(input.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be income or expense"})
		return
	}
	if input.Amount.IsNegative() || input.Amount.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}

	date := time.Now().UTC()
	if input.Date != nil {
		date = input.Date.UTC()
	}

	if err := h.enforceMonthlyCap(userID, date); err != nil {
		if errors.Is(err, errMonthlyCapReached) {
			c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create transaction"})
		return
	}

	tx := ledger.Transaction{
		UserID:      userID,
		Type:        input.Type,
		Amount:      input.Amount,
		CategoryID:  input.CategoryID,
		Description: input.Description,
		Date:        date,
	}
	if err := h.db.Create(&tx).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create transaction"})
		return
	}
	c.JSON(http.StatusCreated, tx)
}

func (h *Handler) Update(c *gin.Context) {
	userID := c.GetString("user_id")
	id := c.Param("id")

	var existing ledger.Transaction
	if err := h.db.Where("id = ? AND user_id = ?", id, userID).First(&existing).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}

	var input transactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !ledger.ValidType(input.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be income or expense"})
		return
	}
	if input.Amount.IsNegative() || input.Amount.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must be positive"})
		return
	}

	updates := map[string]interface{}{
		"type":        input.Type,
		"amount":      input.Amount,
		"category_id": input.CategoryID,
		"description": input.Description,
	}
	if input.Date != nil {
		updates["date"] = input.Date.UTC()
	}

	if err := h.db.Model(&existing).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update transaction"})
		return
	}

	var updated ledger.Transaction
	h.db.Where("id = ?", id).First(&updated)
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c *gin.Context) {
	userID := c.GetString("user_id")
	id := c.Param("id")

	res := h.db.Where("id = ? AND user_id = ?", id, userID).Delete(&ledger.Transaction{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete transaction"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Transaction not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
