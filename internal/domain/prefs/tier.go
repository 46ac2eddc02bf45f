package prefs

import "strings"

// Tier constants (single source of truth)
const (
	TierFree = "free"
	TierPro  = "pro"
)

// NormalizeTier collapses arbitrary input to a known tier, defaulting to free.
func NormalizeTier(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case TierPro:
		return TierPro
	default:
		return TierFree
	}
}

// TierForSubscriptionStatus maps a provider subscription status to the tier
// it entitles. Only a currently active subscription grants pro; every other
// status (past_due, canceled, incomplete, ...) falls back to free.
func TierForSubscriptionStatus(status string) string {
	if strings.TrimSpace(status) == "active" {
		return TierPro
	}
	return TierFree
}
