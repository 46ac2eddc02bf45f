package users

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"fintrack-app/database"
	"fintrack-app/internal/domain/billing"
	"fintrack-app/internal/domain/prefs"
	"fintrack-app/internal/domain/users"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return db
}

func meRouter(db *gorm.DB, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(db)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", userID) })
	r.GET("/me", h.GetCurrentUser)
	return r
}

func getMe(t *testing.T, r *gin.Engine) map[string]json.RawMessage {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestGetCurrentUser_NormalizesSubscriptionStatus(t *testing.T) {
	db := newTestDB(t)
	u := users.User{Email: "a@b.c", Role: "user"}
	require.NoError(t, db.Create(&u).Error)

	sub := "sub_1"
	cus := "cus_1"
	p := prefs.Defaults(u.ID)
	p.PlanTier = prefs.TierFree
	p.StripeCustomerID = &cus
	p.StripeSubscriptionID = &sub
	require.NoError(t, db.Create(&p).Error)

	// Raw provider status, stored as delivered by the webhook.
	require.NoError(t, db.Create(&billing.Subscription{
		StripeSubscriptionID: "sub_1",
		StripeCustomerID:     "cus_1",
		UserID:               u.ID,
		Status:               "unpaid",
	}).Error)

	body := getMe(t, meRouter(db, u.ID))

	var dto struct {
		Status            string `json:"status"`
		SubscriptionID    string `json:"subscription_id"`
		CancelAtPeriodEnd bool   `json:"cancel_at_period_end"`
	}
	require.NoError(t, json.Unmarshal(body["subscription"], &dto))
	assert.Equal(t, "past_due", dto.Status)
	assert.Equal(t, "sub_1", dto.SubscriptionID)
}

func TestGetCurrentUser_NoSubscriptionBlockWhenNeverSubscribed(t *testing.T) {
	db := newTestDB(t)
	u := users.User{Email: "a@b.c", Role: "user"}
	require.NoError(t, db.Create(&u).Error)

	body := getMe(t, meRouter(db, u.ID))
	assert.Equal(t, "null", string(body["subscription"]))

	var features map[string]bool
	require.NoError(t, json.Unmarshal(body["features"], &features))
	assert.False(t, features[prefs.FeatureAdvancedAnalytics])
}
