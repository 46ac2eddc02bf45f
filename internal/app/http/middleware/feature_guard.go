package middleware

import (
	"net/http"

	"fintrack-app/internal/domain/prefs"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// RequireFeature loads the caller's preferences and rejects the request when
// their plan tier does not unlock the named feature. Missing preferences are
// treated as free tier, so unknown features always deny.
func RequireFeature(db *gorm.DB, feature string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString("user_id")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not identified"})
			return
		}

		tier := prefs.TierFree
		var p prefs.UserPreferences
		if err := db.Where("user_id = ?", userID).First(&p).Error; err == nil {
			tier = p.PlanTier
		}

		if !prefs.IsFeatureAvailable(feature, tier) {
			c.AbortWithStatusJSON(http.StatusPaymentRequired, gin.H{
				"error":   "This feature requires a Pro subscription",
				"feature": feature,
			})
			return
		}

		c.Set("plan_tier", tier)
		c.Next()
	}
}
