package categories

import (
	"net/http"

	"fintrack-app/internal/domain/ledger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) List(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	cats := []ledger.Category{}
	if err := h.db.Where("user_id = ?", userID).Order("is_default DESC, name ASC").Find(&cats).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load categories"})
		return
	}
	c.JSON(http.StatusOK, cats)
}

// Create adds a custom category. The route sits behind the customCategories
// feature guard, so only pro users reach this handler.
func (h *Handler) Create(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		Name string `json:"name" binding:"required"`
		Type string `json:"type" binding:"required"`
		Icon string `json:"icon"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if !ledger.ValidType(input.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type must be income or expense"})
		return
	}

	cat := ledger.Category{
		UserID: userID,
		Name:   input.Name,
		Type:   input.Type,
		Icon:   input.Icon,
	}
	if err := h.db.Create(&cat).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create category"})
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *Handler) Delete(c *gin.Context) {
	userID := c.GetString("user_id")
	id := c.Param("id")

	var cat ledger.Category
	if err := h.db.Where("id = ? AND user_id = ?", id, userID).First(&cat).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Category not found"})
		return
	}
	if cat.IsDefault {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Default categories cannot be deleted"})
		return
	}

	if err := h.db.Delete(&cat).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete category"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
