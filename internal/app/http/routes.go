package routes

import (
	adminapi "fintrack-app/internal/api/admin"
	"fintrack-app/internal/api/analytics"
	authapi "fintrack-app/internal/api/auth"
	"fintrack-app/internal/api/billing"
	"fintrack-app/internal/api/budgets"
	"fintrack-app/internal/api/categories"
	"fintrack-app/internal/api/plans"
	"fintrack-app/internal/api/preferences"
	stripewebhooks "fintrack-app/internal/api/stripewebhook"
	"fintrack-app/internal/api/transactions"
	"fintrack-app/internal/api/users"
	"fintrack-app/internal/app/http/middleware"
	"fintrack-app/internal/domain/prefs"
	"fintrack-app/internal/infra/notify"
	stripeinfra "fintrack-app/internal/infra/stripe"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Deps is the process-wide service handles, built once in main.
type Deps struct {
	DB            *gorm.DB
	Stripe        stripeinfra.Gateway
	Hub           *notify.Hub
	Log           zerolog.Logger
	JWTSecret     string
	WebhookSecret string
	AppURL        string
	Google        authapi.GoogleConfig
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	authHandler := authapi.NewHandler(d.DB, d.JWTSecret, d.Google)
	userHandler := users.NewHandler(d.DB)
	prefHandler := preferences.NewHandler(d.DB, d.Hub)
	billingHandler := billing.NewHandler(d.DB, d.Stripe, d.AppURL, d.Log)
	webhookHandler := stripewebhooks.NewHandler(d.DB, d.WebhookSecret, d.Hub, d.Log)
	txHandler := transactions.NewHandler(d.DB)
	catHandler := categories.NewHandler(d.DB)
	budgetHandler := budgets.NewHandler(d.DB)
	analyticsHandler := analytics.NewHandler(d.DB)
	planHandler := plans.NewHandler(d.DB, d.Stripe)
	adminHandler := adminapi.NewHandler(d.DB)

	// The webhook reads the raw body for signature verification, so it stays
	// outside the JSON sanitizer.
	r.POST("/webhook", webhookHandler.HandleWebhook)
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := r.Group("/")
	public.Use(middleware.SanitizeAndCleanInputMiddleware())
	public.POST("/register", authHandler.Register)
	public.POST("/login", authHandler.Login)
	public.GET("/plans", planHandler.ListPlans)
	public.GET("/auth/google", authHandler.GoogleStart)
	public.GET("/auth/google/callback", authHandler.GoogleCallback)

	// Authenticated
	auth := r.Group("/")
	auth.Use(middleware.AuthMiddleware(d.JWTSecret))
	auth.GET("/me", userHandler.GetCurrentUser)
	auth.POST("/change-password", authHandler.ChangePassword)

	auth.GET("/preferences", prefHandler.GetPreferences)
	auth.PUT("/preferences", prefHandler.UpdatePreferences)
	auth.GET("/ws/preferences", prefHandler.WatchPreferences)

	auth.POST("/create-checkout-session", billingHandler.CreateCheckoutSession)
	auth.GET("/payments", billingHandler.GetPaymentHistory)
	auth.POST("/get-invoice", billingHandler.GetInvoice)

	auth.GET("/transactions", txHandler.List)
	auth.POST("/transactions", txHandler.Create)
	auth.PUT("/transactions/:id", txHandler.Update)
	auth.DELETE("/transactions/:id", txHandler.Delete)

	auth.GET("/categories", catHandler.List)
	auth.DELETE("/categories/:id", catHandler.Delete)

	auth.GET("/budgets", budgetHandler.List)
	auth.POST("/budgets", budgetHandler.Upsert)
	auth.DELETE("/budgets/:id", budgetHandler.Delete)

	auth.GET("/analytics/summary", analyticsHandler.Summary)

	// Pro features
	pro := auth.Group("/")
	pro.POST("/categories", middleware.RequireFeature(d.DB, prefs.FeatureCustomCategories), catHandler.Create)
	pro.GET("/analytics/trend", middleware.RequireFeature(d.DB, prefs.FeatureAdvancedAnalytics), analyticsHandler.Trend)

	// Admin routes
	admin := r.Group("/admin")
	admin.Use(middleware.AuthMiddleware(d.JWTSecret), middleware.RequireRole("admin"))
	admin.GET("/dashboard", adminHandler.Dashboard)
	admin.GET("/users", adminHandler.ListAllUsers)
	admin.GET("/payments", adminHandler.ListAllPayments)
	admin.POST("/sync-plans", planHandler.SyncPlansFromStripe)
}
