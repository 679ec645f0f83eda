package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/carecircle/carecircle-api/internal/config"
	"github.com/carecircle/carecircle-api/internal/models"
)

// Connect opens the process-local database. The default DSN is a shared
// in-memory SQLite database, so the collection lives and dies with the
// process; there is no ambient singleton, callers inject the handle.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	logMode := logger.Silent
	if cfg.GinMode == "debug" {
		logMode = logger.Warn
	}

	db, err := gorm.Open(sqlite.Open(cfg.DatabaseDSN), &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

// Migrate creates the schema for the task and user collections.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Task{}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
