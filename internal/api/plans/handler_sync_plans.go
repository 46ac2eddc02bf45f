package plans

import (
	"net/http"

	"fintrack-app/internal/domain/plans"
	stripeinfra "fintrack-app/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Handler struct {
	db      *gorm.DB
	gateway stripeinfra.Gateway
}

func NewHandler(db *gorm.DB, gateway stripeinfra.Gateway) *Handler {
	return &Handler{db: db, gateway: gateway}
}

// ListPlans serves the checkout price allow-list to the client.
func (h *Handler) ListPlans(c *gin.Context) {
	all := []plans.Plan{}
	if err := h.db.Order("unit_amount ASC").Find(&all).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load plans"})
		return
	}
	c.JSON(http.StatusOK, all)
}

// SyncPlansFromStripe refreshes the allow-list from the active recurring
// prices in Stripe. Tier comes from the price metadata, defaulting to pro
// since the free tier has no purchasable price.
func (h *Handler) SyncPlansFromStripe(c *gin.Context) {
	prices, err := h.gateway.ListActiveRecurringPrices()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch Stripe prices"})
		return
	}

	synced := 0
	skipped := 0
	for _, p := range prices {
		if !p.Active || p.Recurring == nil || p.Product == nil || !p.Product.Active {
			skipped++
			continue
		}
		if p.Metadata != nil && p.Metadata["visible"] == "false" {
			skipped++
			continue
		}

		name := p.Product.Name
		tier := "pro"
		if p.Metadata != nil {
			if v := p.Metadata["plan"]; v != "" {
				name = v
			}
			if v := p.Metadata["tier"]; v != "" {
				tier = v
			}
		}

		plan := plans.Plan{
			Name:          name,
			StripePriceID: p.ID,
			Tier:          tier,
			Interval:      string(p.Recurring.Interval),
			UnitAmount:    p.UnitAmount,
			Currency:      string(p.Currency),
		}
		if err := h.db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "stripe_price_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "tier", "interval", "unit_amount", "currency"}),
		}).Create(&plan).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store plan"})
			return
		}
		synced++
	}

	c.JSON(http.StatusOK, gin.H{"synced": synced, "skipped": skipped})
}
