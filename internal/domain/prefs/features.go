package prefs

// Feature names consulted by the gate. Keep in sync with the matrix below.
const (
	FeatureAdvancedAnalytics     = "advancedAnalytics"
	FeatureUnlimitedTransactions = "unlimitedTransactions"
	FeatureGoogleDriveBackup     = "googleDriveBackup"
	FeatureFamilyWorkspace       = "familyWorkspace"
	FeatureGoalSimulator         = "goalSimulator"
	FeatureRecurringBillAlerts   = "recurringBillAlerts"
	FeatureCustomCategories      = "customCategories"
)

// featureMatrix maps a feature to the tiers allowed to use it.
var featureMatrix = map[string][]string{
	FeatureAdvancedAnalytics:     {TierPro},
	FeatureUnlimitedTransactions: {TierPro},
	FeatureGoogleDriveBackup:     {TierPro},
	FeatureFamilyWorkspace:       {TierPro},
	FeatureGoalSimulator:         {TierPro},
	FeatureRecurringBillAlerts:   {TierPro},
	FeatureCustomCategories:      {TierPro},
}

// IsFeatureAvailable reports whether a plan tier may use a feature.
// Unknown features are unavailable for every tier (fail closed).
func IsFeatureAvailable(feature, tier string) bool {
	for _, allowed := range featureMatrix[feature] {
		if allowed == tier {
			return true
		}
	}
	return false
}

// Features returns the full gate outcome for a tier, keyed by feature name.
func Features(tier string) map[string]bool {
	out := make(map[string]bool, len(featureMatrix))
	for name := range featureMatrix {
		out[name] = IsFeatureAvailable(name, tier)
	}
	return out
}
