package transactions

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"fintrack-app/database"
	"fintrack-app/internal/domain/ledger"
	"fintrack-app/internal/domain/prefs"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
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

func txRouter(db *gorm.DB, userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(db)
	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("user_id", userID) })
	r.GET("/transactions", h.List)
	r.POST("/transactions", h.Create)
	r.PUT("/transactions/:id", h.Update)
	r.DELETE("/transactions/:id", h.Delete)
	return r
}

func doJSON(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, bytes.NewBufferString(body))
	}
	r.ServeHTTP(w, req)
	return w
}

func seedTier(t *testing.T, db *gorm.DB, userID, tier string) {
	t.Helper()
	p := prefs.Defaults(userID)
	p.PlanTier = tier
	require.NoError(t, db.Create(&p).Error)
}

func fillMonth(t *testing.T, db *gorm.DB, userID string, n int, month time.Time) {
	t.Helper()
	txs := make([]ledger.Transaction, 0, n)
	for i := 0; i < n; i++ {
		txs = append(txs, ledger.Transaction{
			UserID:      userID,
			Type:        ledger.TypeExpense,
			Amount:      decimal.NewFromInt(1),
			Description: fmt.Sprintf("seed %d", i),
			Date:        month.Add(time.Duration(i) * time.Minute),
		})
	}
	require.NoError(t, db.CreateInBatches(txs, 50).Error)
}

func TestCreate_FreeTierCapRejectsAtLimit(t *testing.T) {
	db := newTestDB(t)
	seedTier(t, db, "u1", prefs.TierFree)
	r := txRouter(db, "u1")

	month := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	fillMonth(t, db, "u1", FreeTierMonthlyLimit, month)

	w := doJSON(r, http.MethodPost, "/transactions",
		`{"type":"expense","amount":"9.99","date":"2026-09-15T12:00:00Z"}`)
	require.Equal(t, http.StatusPaymentRequired, w.Code)

	var count int64
	db.Model(&ledger.Transaction{}).Where("user_id = ?", "u1").Count(&count)
	assert.EqualValues(t, FreeTierMonthlyLimit, count)
}

func TestCreate_CapIsPerMonth(t *testing.T) {
	db := newTestDB(t)
	seedTier(t, db, "u1", prefs.TierFree)
	r := txRouter(db, "u1")

	fillMonth(t, db, "u1", FreeTierMonthlyLimit,
		time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC))

	// A full previous month does not block the next one.
	w := doJSON(r, http.MethodPost, "/transactions",
		`{"type":"expense","amount":"5.00","date":"2026-09-02T12:00:00Z"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreate_ProTierHasNoCap(t *testing.T) {
	db := newTestDB(t)
	seedTier(t, db, "u1", prefs.TierPro)
	r := txRouter(db, "u1")

	month := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	fillMonth(t, db, "u1", FreeTierMonthlyLimit, month)

	w := doJSON(r, http.MethodPost, "/transactions",
		`{"type":"income","amount":"100.00","date":"2026-09-15T12:00:00Z"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreate_MissingPreferencesDefaultsToFree(t *testing.T) {
	db := newTestDB(t)
	r := txRouter(db, "ghost")

	month := time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC)
	fillMonth(t, db, "ghost", FreeTierMonthlyLimit, month)

	w := doJSON(r, http.MethodPost, "/transactions",
		`{"type":"expense","amount":"1.00","date":"2026-09-15T12:00:00Z"}`)
	assert.Equal(t, http.StatusPaymentRequired, w.Code)
}

func TestCreate_CapCheckFailureIsNotPaymentRequired(t *testing.T) {
	db := newTestDB(t)
	seedTier(t, db, "u1", prefs.TierFree)
	r := txRouter(db, "u1")

	// A broken store must surface as a server error, not as a plan limit.
	require.NoError(t, db.Migrator().DropTable(&ledger.Transaction{}))

	w := doJSON(r, http.MethodPost, "/transactions",
		`{"type":"expense","amount":"1.00","date":"2026-09-15T12:00:00Z"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestCreate_Validation(t *testing.T) {
	db := newTestDB(t)
	seedTier(t, db, "u1", prefs.TierFree)
	r := txRouter(db, "u1")

	for name, body := range map[string]string{
		"bad type":        `{"type":"transfer","amount":"1.00"}`,
		"zero amount":     `{"type":"expense","amount":"0"}`,
		"negative amount": `{"type":"expense","amount":"-3.50"}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := doJSON(r, http.MethodPost, "/transactions", body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestList_FiltersByMonth(t *testing.T) {
	db := newTestDB(t)
	seedTier(t, db, "u1", prefs.TierFree)
	r := txRouter(db, "u1")

	fillMonth(t, db, "u1", 3, time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC))
	fillMonth(t, db, "u1", 2, time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC))

	w := doJSON(r, http.MethodGet, "/transactions?month=2026-09", "")
	require.Equal(t, http.StatusOK, w.Code)

	var txs []ledger.Transaction
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &txs))
	assert.Len(t, txs, 2)

	w = doJSON(r, http.MethodGet, "/transactions?month=september", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateAndDelete_ScopedToOwner(t *testing.T) {
	db := newTestDB(t)
	seedTier(t, db, "u1", prefs.TierFree)

	tx := ledger.Transaction{
		UserID: "other", Type: ledger.TypeExpense,
		Amount: decimal.NewFromInt(10), Date: time.Now().UTC(),
	}
	require.NoError(t, db.Create(&tx).Error)

	r := txRouter(db, "u1")

	w := doJSON(r, http.MethodPut, "/transactions/"+tx.ID, `{"type":"income","amount":"1.00"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(r, http.MethodDelete, "/transactions/"+tx.ID, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var count int64
	db.Model(&ledger.Transaction{}).Count(&count)
	assert.EqualValues(t, 1, count, "foreign row must survive")
}
