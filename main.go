package main

import (
	"os"
	"time"

	"fintrack-app/config"
	"fintrack-app/database"
	authapi "fintrack-app/internal/api/auth"
	routes "fintrack-app/internal/app/http"
	"fintrack-app/internal/infra/notify"
	stripeinfra "fintrack-app/internal/infra/stripe"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	config.LoadEnv()

	level, err := zerolog.ParseLevel(config.LOG_LEVEL)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
	log.Logger = logger

	db, err := database.Connect(config.DB_URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("database init failed")
	}

	deps := routes.Deps{
		DB:            db,
		Stripe:        stripeinfra.NewGateway(config.STRIPE_SECRET_KEY),
		Hub:           notify.NewHub(),
		Log:           logger,
		JWTSecret:     config.JWT_SECRET,
		WebhookSecret: config.STRIPE_WEBHOOK_SECRET,
		AppURL:        config.APP_URL,
		Google: authapi.GoogleConfig{
			ClientID:         config.GOOGLE_CLIENT_ID,
			ClientSecret:     config.GOOGLE_CLIENT_SECRET,
			RedirectURL:      config.GOOGLE_REDIRECT_URL,
			FrontendRedirect: config.GOOGLE_FRONTEND_REDIRECT,
		},
	}

	r := gin.Default()

	// CORS first so preflight OPTIONS never hits auth or the sanitizer.
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{config.CORS_ORIGIN},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Stripe-Signature"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.RegisterRoutes(r, deps)

	logger.Info().Str("port", config.PORT).Msg("starting server")
	if err := r.Run(":" + config.PORT); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
