package database

import (
	"fmt"

	"fintrack-app/internal/domain/billing"
	"fintrack-app/internal/domain/ledger"
	"fintrack-app/internal/domain/plans"
	"fintrack-app/internal/domain/prefs"
	"fintrack-app/internal/domain/users"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the Postgres handle and runs migrations. The returned *gorm.DB
// is constructed once at process start and injected into handlers.
func Connect(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate runs gorm auto-migration for all domain models.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// core
		&users.User{},
		&prefs.UserPreferences{},
		&plans.Plan{},

		// billing
		&billing.Order{},
		&billing.Subscription{},

		// ledger
		&ledger.Transaction{},
		&ledger.Category{},
		&ledger.Budget{},
	); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}
