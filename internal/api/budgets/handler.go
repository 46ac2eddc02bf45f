package budgets

import (
	"net/http"

	"fintrack-app/internal/domain/ledger"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

type budgetInput struct {
	CategoryID string          `json:"category_id" binding:"required"`
	Month      string          `json:"month" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
}

func (h *Handler) List(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	q := h.db.Where("user_id = ?", userID)
	if month := c.Query("month"); month != "" {
		q = q.Where("month = ?", month)
	}

	bs := []ledger.Budget{}
	if err := q.Order("month DESC").Find(&bs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load budgets"})
		return
	}
	c.JSON(http.StatusOK, bs)
}

// Upsert sets the budget for one category+month; repeating the call with a
// new amount overwrites it.
func (h *Handler) Upsert(c *gin.Context) {
	userID := c.GetString("user_id")

	var input budgetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !ledger.ValidMonth(input.Month) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid month, expected YYYY-MM"})
		return
	}
	if input.Amount.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "amount must not be negative"})
		return
	}

	var cat ledger.Category
	if err := h.db.Where("id = ? AND user_id = ?", input.CategoryID, userID).First(&cat).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown category"})
		return
	}

	b := ledger.Budget{
		UserID:     userID,
		CategoryID: input.CategoryID,
		Month:      input.Month,
		Amount:     input.Amount,
	}
	if err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "category_id"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount"}),
	}).Create(&b).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save budget"})
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) Delete(c *gin.Context) {
	userID := c.GetString("user_id")
	id := c.Param("id")

	res := h.db.Where("id = ? AND user_id = ?", id, userID).Delete(&ledger.Budget{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete budget"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Budget not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
