package admin

import (
	"net/http"

	"fintrack-app/internal/domain/billing"
	"fintrack-app/internal/domain/prefs"
	"fintrack-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type Handler struct {
	db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

func (h *Handler) Dashboard(c *gin.Context) {
	var userCount, proCount, orderCount int64
	h.db.Model(&users.User{}).Count(&userCount)
	h.db.Model(&prefs.UserPreferences{}).Where("plan_tier = ?", prefs.TierPro).Count(&proCount)
	h.db.Model(&billing.Order{}).Count(&orderCount)

	c.JSON(http.StatusOK, gin.H{
		"users":     userCount,
		"pro_users": proCount,
		"orders":    orderCount,
	})
}

func (h *Handler) ListAllUsers(c *gin.Context) {
	all := []users.User{}
	if err := h.db.Order("created_at DESC").Find(&all).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load users"})
		return
	}

	out := make([]gin.H, 0, len(all))
	for _, u := range all {
		var p prefs.UserPreferences
		tier := prefs.TierFree
		if err := h.db.Where("user_id = ?", u.ID).First(&p).Error; err == nil {
			tier = p.PlanTier
		}
		out = append(out, gin.H{
			"id":        u.ID,
			"email":     u.Email,
			"name":      u.Name,
			"role":      u.Role,
			"plan_tier": tier,
		})
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) ListAllPayments(c *gin.Context) {
	orders := []billing.Order{}
	if err := h.db.Order("order_date DESC").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load payments"})
		return
	}
	c.JSON(http.StatusOK, orders)
}
