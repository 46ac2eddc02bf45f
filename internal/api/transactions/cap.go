package transactions

import (
	"errors"
	"time"

	"fintrack-app/internal/domain/ledger"
	"fintrack-app/internal/domain/prefs"
)

var errMonthlyCapReached = errors.New("free plan transaction limit reached for this month")

// enforceMonthlyCap rejects the write when a free-tier user already logged
// FreeTierMonthlyLimit transactions in the month the new one falls into.
func (h *Handler) enforceMonthlyCap(userID string, date time.Time) error {
	tier := prefs.TierFree
	var p prefs.UserPreferences
	if err := h.db.Where("user_id = ?", userID).First(&p).Error; err == nil {
		tier = p.PlanTier
	}
	if prefs.IsFeatureAvailable(prefs.FeatureUnlimitedTransactions, tier) {
		return nil
	}

	monthStart := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, time.UTC)
	var count int64
	if err := h.db.Model(&ledger.Transaction{}).
		Where("user_id = ? AND date >= ? AND date < ?", userID, monthStart, monthStart.AddDate(0, 1, 0)).
		Count(&count).Error; err != nil {
		return err
	}
	if count >= FreeTierMonthlyLimit {
		return errMonthlyCapReached
	}
	return nil
}
