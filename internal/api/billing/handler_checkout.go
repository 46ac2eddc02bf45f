package billing

import (
	"net/http"

	"fintrack-app/internal/domain/plans"
	"fintrack-app/internal/domain/users"
	"fintrack-app/internal/infra/metrics"
	stripeinfra "fintrack-app/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

type Handler struct {
	db      *gorm.DB
	gateway stripeinfra.Gateway
	appURL  string
	log     zerolog.Logger
}

func NewHandler(db *gorm.DB, gateway stripeinfra.Gateway, appURL string, log zerolog.Logger) *Handler {
	return &Handler{db: db, gateway: gateway, appURL: appURL, log: log.With().Str("component", "billing").Logger()}
}

// CreateCheckoutSession opens a hosted Stripe checkout page for a
// subscription purchase. Nothing is written locally here: the webhook owns
// all persistent billing state, so a failed attempt is always safe to retry.
func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	var body struct {
		PriceID string `json:"priceId"`
		UserID  string `json:"userId"`
		Email   string `json:"email"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.PriceID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing or invalid priceId"})
		return
	}

	authedID := c.GetString("user_id")
	if authedID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
		return
	}
	if body.UserID != "" && body.UserID != authedID {
		c.JSON(http.StatusForbidden, gin.H{"error": "userId does not match authenticated user"})
		return
	}

	var user users.User
	if err := h.db.Where("id = ?", authedID).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found"})
		return
	}
	email := user.Email
	if body.Email != "" {
		email = body.Email
	}

	// allow-list price id
	var plan plans.Plan
	if err := h.db.Where("stripe_price_id = ?", body.PriceID).First(&plan).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown plan/priceId"})
		return
	}

	// Reuse an existing Stripe customer by email, create one otherwise, and
	// make sure it carries our user id either way. Lookup-by-email can race
	// with itself for a brand-new email; the orphaned duplicate customer is
	// harmless because the session metadata is what the webhook trusts.
	cus, err := h.gateway.FindCustomerByEmail(email)
	if err != nil {
		h.log.Error().Err(err).Msg("customer lookup failed")
		metrics.CheckoutSessions.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
		return
	}
	if cus != nil {
		if _, err := h.gateway.TagCustomer(cus.ID, user.ID); err != nil {
			h.log.Error().Err(err).Str("customer_id", cus.ID).Msg("customer tag failed")
			metrics.CheckoutSessions.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
			return
		}
	} else {
		cus, err = h.gateway.CreateCustomer(email, user.ID)
		if err != nil {
			h.log.Error().Err(err).Msg("customer creation failed")
			metrics.CheckoutSessions.WithLabelValues("error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
			return
		}
	}

	session, err := h.gateway.CreateSubscriptionCheckout(stripeinfra.CheckoutParams{
		CustomerID: cus.ID,
		PriceID:    plan.StripePriceID,
		UserID:     user.ID,
		SuccessURL: h.appURL + "/settings?success=true",
		CancelURL:  h.appURL + "/settings?canceled=true",
	})
	if err != nil {
		h.log.Error().Err(err).Str("price_id", plan.StripePriceID).Msg("session creation failed")
		metrics.CheckoutSessions.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create checkout session"})
		return
	}

	metrics.CheckoutSessions.WithLabelValues("ok").Inc()
	c.JSON(http.StatusOK, gin.H{"url": session.URL})
}
