package stripewebhooks

import (
	"encoding/json"
	"io"
	"net/http"

	"fintrack-app/internal/infra/metrics"
	"fintrack-app/internal/infra/notify"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stripe/stripe-go/v75"
	"github.com/stripe/stripe-go/v75/webhook"
	"gorm.io/gorm"
)

const maxBodyBytes = 65536

// Handler reconciles asynchronous Stripe events into the preferences store.
// Every write is an upsert keyed by Stripe's own object id, so redelivered
// events are harmless. Every handler acts on the event payload alone and
// assumes no ordering between events.
type Handler struct {
	db     *gorm.DB
	secret string
	hub    *notify.Hub
	log    zerolog.Logger
}

func NewHandler(db *gorm.DB, webhookSecret string, hub *notify.Hub, log zerolog.Logger) *Handler {
	return &Handler{db: db, secret: webhookSecret, hub: hub, log: log.With().Str("component", "stripewebhook").Logger()}
}

func (h *Handler) HandleWebhook(c *gin.Context) {
	if h.secret == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "STRIPE_WEBHOOK_SECRET not configured"})
		return
	}

	payload, err := readStripeBody(c, maxBodyBytes)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Error reading request body"})
		return
	}

	// The signature is the sole authentication for this endpoint. Nothing in
	// the payload is trusted before this check passes.
	event, err := webhook.ConstructEventWithOptions(
		payload,
		c.GetHeader("Stripe-Signature"),
		h.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		h.log.Warn().Err(err).Msg("signature verification failed")
		metrics.WebhookEvents.WithLabelValues("unknown", "bad_signature").Inc()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Signature verification failed"})
		return
	}

	log := h.log.With().Str("event_id", event.ID).Str("event_type", string(event.Type)).Logger()

	switch event.Type {
	case "checkout.session.completed":
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			metrics.WebhookEvents.WithLabelValues(string(event.Type), "error").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse session"})
			return
		}
		if err := h.handleCheckoutSessionCompleted(log, &session); err != nil {
			log.Error().Err(err).Str("session_id", session.ID).Msg("checkout completion failed")
			metrics.WebhookEvents.WithLabelValues(string(event.Type), "error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

	case "customer.subscription.updated":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			metrics.WebhookEvents.WithLabelValues(string(event.Type), "error").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse subscription"})
			return
		}
		if err := h.handleSubscriptionUpdated(log, &sub); err != nil {
			log.Error().Err(err).Str("subscription_id", sub.ID).Msg("subscription update failed")
			metrics.WebhookEvents.WithLabelValues(string(event.Type), "error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

	case "customer.subscription.deleted":
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			metrics.WebhookEvents.WithLabelValues(string(event.Type), "error").Inc()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to parse subscription"})
			return
		}
		if err := h.handleSubscriptionDeleted(log, &sub); err != nil {
			log.Error().Err(err).Str("subscription_id", sub.ID).Msg("subscription deletion failed")
			metrics.WebhookEvents.WithLabelValues(string(event.Type), "error").Inc()
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

	default:
		// Acknowledge unknown events to avoid retries
		metrics.WebhookEvents.WithLabelValues(string(event.Type), "ignored").Inc()
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	metrics.WebhookEvents.WithLabelValues(string(event.Type), "ok").Inc()
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func readStripeBody(c *gin.Context, maxBytes int64) ([]byte, error) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
	return io.ReadAll(c.Request.Body)
}
