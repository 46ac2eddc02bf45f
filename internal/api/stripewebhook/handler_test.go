package stripewebhooks

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fintrack-app/database"
	"fintrack-app/internal/domain/billing"
	"fintrack-app/internal/domain/prefs"
	"fintrack-app/internal/infra/notify"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v75/webhook"
	"gorm.io/gorm"
)

const testSecret = "whsec_test_secret"

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func newTestRouter(t *testing.T, db *gorm.DB, hub *notify.Hub) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(db, testSecret, hub, zerolog.Nop())
	r.POST("/webhook", h.HandleWebhook)
	return r
}

func signedRequest(t *testing.T, payload string) *http.Request {
	t.Helper()
	now := time.Now()
	sig := webhook.ComputeSignature(now, []byte(payload), testSecret)
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString(payload))
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", now.Unix(), hex.EncodeToString(sig)))
	return req
}

func checkoutCompletedEvent(sessionID, userID, customerID, subscriptionID string, amount int64) string {
	meta := ""
	if userID != "" {
		meta = fmt.Sprintf(`"metadata":{"user_id":%q},`, userID)
	}
	return fmt.Sprintf(`{
		"id": "evt_%s",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {
			"id": %q,
			"object": "checkout.session",
			%s
			"customer": %q,
			"subscription": %q,
			"payment_intent": "pi_1",
			"amount_total": %d,
			"currency": "usd",
			"payment_status": "paid"
		}}
	}`, sessionID, sessionID, meta, customerID, subscriptionID, amount)
}

func subscriptionEvent(eventType, subscriptionID, customerID, status string) string {
	return fmt.Sprintf(`{
		"id": "evt_%s_%s",
		"object": "event",
		"type": %q,
		"data": {"object": {
			"id": %q,
			"object": "subscription",
			"customer": %q,
			"status": %q,
			"current_period_start": 1700000000,
			"current_period_end": 1702592000,
			"cancel_at_period_end": false
		}}
	}`, eventType, subscriptionID, eventType, subscriptionID, customerID, status)
}

func deliver(t *testing.T, r *gin.Engine, payload string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, signedRequest(t, payload))
	return w
}

func TestWebhook_RejectsBadSignature(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, notify.NewHub())

	payload := checkoutCompletedEvent("cs_1", "u1", "cus_1", "sub_1", 100)
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString(payload))
	req.Header.Set("Stripe-Signature", "t=0,v1=deadbeef")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// No side effects on a rejected delivery.
	var count int64
	db.Model(&prefs.UserPreferences{}).Count(&count)
	assert.Zero(t, count)
}

func TestWebhook_RejectsMissingSignature(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, notify.NewHub())

	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString("{}"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestWebhook_CheckoutSessionCompleted(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, notify.NewHub())

	w := deliver(t, r, checkoutCompletedEvent("cs_1", "u1", "cus_1", "sub_1", 100))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"received":true`)

	var p prefs.UserPreferences
	require.NoError(t, db.Where("user_id = ?", "u1").First(&p).Error)
	assert.Equal(t, prefs.TierPro, p.PlanTier)
	require.NotNil(t, p.StripeCustomerID)
	assert.Equal(t, "cus_1", *p.StripeCustomerID)
	require.NotNil(t, p.StripeSubscriptionID)
	assert.Equal(t, "sub_1", *p.StripeSubscriptionID)

	var order billing.Order
	require.NoError(t, db.Where("stripe_session_id = ?", "cs_1").First(&order).Error)
	assert.Equal(t, "u1", order.UserID)
	assert.Equal(t, int64(100), order.AmountTotal)
	assert.Equal(t, "paid", order.PaymentStatus)
}

func TestWebhook_CheckoutRedeliveryIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, notify.NewHub())

	payload := checkoutCompletedEvent("cs_1", "u1", "cus_1", "sub_1", 100)
	require.Equal(t, http.StatusOK, deliver(t, r, payload).Code)
	require.Equal(t, http.StatusOK, deliver(t, r, payload).Code)

	var orders int64
	db.Model(&billing.Order{}).Where("stripe_session_id = ?", "cs_1").Count(&orders)
	assert.Equal(t, int64(1), orders)

	var p prefs.UserPreferences
	require.NoError(t, db.Where("user_id = ?", "u1").First(&p).Error)
	assert.Equal(t, prefs.TierPro, p.PlanTier)
}

func TestWebhook_CheckoutMissingUserIDFails(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, notify.NewHub())

	w := deliver(t, r, checkoutCompletedEvent("cs_1", "", "cus_1", "sub_1", 100))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var count int64
	db.Model(&billing.Order{}).Count(&count)
	assert.Zero(t, count)
}

func TestWebhook_CheckoutPreservesUserEditedFields(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, notify.NewHub())

	existing := prefs.UserPreferences{UserID: "u1", PlanTier: prefs.TierFree, Currency: "EUR", Locale: "de-DE"}
	require.NoError(t, db.Create(&existing).Error)

	require.Equal(t, http.StatusOK, deliver(t, r, checkoutCompletedEvent("cs_1", "u1", "cus_1", "sub_1", 100)).Code)

	var p prefs.UserPreferences
	require.NoError(t, db.Where("user_id = ?", "u1").First(&p).Error)
	assert.Equal(t, prefs.TierPro, p.PlanTier)
	assert.Equal(t, "EUR", p.Currency)
	assert.Equal(t, "de-DE", p.Locale)
}

func TestWebhook_SubscriptionUpdated(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, notify.NewHub())

	// Seed the customer mapping the same way a completed checkout would.
	require.Equal(t, http.StatusOK, deliver(t, r, checkoutCompletedEvent("cs_1", "u1", "cus_1", "sub_1", 100)).Code)

	t.Run("non-active status downgrades to free", func(t *testing.T) {
		w := deliver(t, r, subscriptionEvent("customer.subscription.updated", "sub_1", "cus_1", "past_due"))
		require.Equal(t, http.StatusOK, w.Code)

		var p prefs.UserPreferences
		require.NoError(t, db.Where("user_id = ?", "u1").First(&p).Error)
		assert.Equal(t, prefs.TierFree, p.PlanTier)

		var rec billing.Subscription
		require.NoError(t, db.Where("stripe_subscription_id = ?", "sub_1").First(&rec).Error)
		assert.Equal(t, "past_due", rec.Status)
		require.NotNil(t, rec.CurrentPeriodEnd)
	})

	t.Run("active status restores pro", func(t *testing.T) {
		w := deliver(t, r, subscriptionEvent("customer.subscription.updated", "sub_1", "cus_1", "active"))
		require.Equal(t, http.StatusOK, w.Code)

		var p prefs.UserPreferences
		require.NoError(t, db.Where("user_id = ?", "u1").First(&p).Error)
		assert.Equal(t, prefs.TierPro, p.PlanTier)
	})

	t.Run("unknown customer fails the delivery", func(t *testing.T) {
		w := deliver(t, r, subscriptionEvent("customer.subscription.updated", "sub_9", "cus_missing", "active"))
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestWebhook_SubscriptionDeleted(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, notify.NewHub())

	require.Equal(t, http.StatusOK, deliver(t, r, checkoutCompletedEvent("cs_1", "u1", "cus_1", "sub_1", 100)).Code)

	w := deliver(t, r, subscriptionEvent("customer.subscription.deleted", "sub_1", "cus_1", "canceled"))
	require.Equal(t, http.StatusOK, w.Code)

	var p prefs.UserPreferences
	require.NoError(t, db.Where("user_id = ?", "u1").First(&p).Error)
	assert.Equal(t, prefs.TierFree, p.PlanTier)
	assert.Nil(t, p.StripeSubscriptionID)
	require.NotNil(t, p.StripeCustomerID)
	assert.Equal(t, "cus_1", *p.StripeCustomerID)

	var rec billing.Subscription
	require.NoError(t, db.Where("stripe_subscription_id = ?", "sub_1").First(&rec).Error)
	assert.Equal(t, "canceled", rec.Status)
}

func TestWebhook_EventsApplyInEitherOrder(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, notify.NewHub())

	// subscription.updated before its checkout has landed cannot resolve a
	// customer yet and fails; Stripe redelivers it after the checkout event.
	w := deliver(t, r, subscriptionEvent("customer.subscription.updated", "sub_1", "cus_1", "active"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	require.Equal(t, http.StatusOK, deliver(t, r, checkoutCompletedEvent("cs_1", "u1", "cus_1", "sub_1", 100)).Code)
	require.Equal(t, http.StatusOK, deliver(t, r, subscriptionEvent("customer.subscription.updated", "sub_1", "cus_1", "active")).Code)

	var p prefs.UserPreferences
	require.NoError(t, db.Where("user_id = ?", "u1").First(&p).Error)
	assert.Equal(t, prefs.TierPro, p.PlanTier)
}

func TestWebhook_UnknownEventAcknowledged(t *testing.T) {
	db := newTestDB(t)
	r := newTestRouter(t, db, notify.NewHub())

	payload := `{"id":"evt_x","object":"event","type":"invoice.finalized","data":{"object":{}}}`
	w := deliver(t, r, payload)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestWebhook_PublishesToHub(t *testing.T) {
	db := newTestDB(t)
	hub := notify.NewHub()
	r := newTestRouter(t, db, hub)

	updates, cancel := hub.Subscribe("u1")
	defer cancel()

	require.Equal(t, http.StatusOK, deliver(t, r, checkoutCompletedEvent("cs_1", "u1", "cus_1", "sub_1", 100)).Code)

	select {
	case p := <-updates:
		assert.Equal(t, prefs.TierPro, p.PlanTier)
	case <-time.After(time.Second):
		t.Fatal("expected a preferences update on the hub")
	}
}
