package db

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/diewo77/fieldops-app/internal/models"
)

// Connect opens the PostgreSQL connection with a small retry loop to let the
// database come up first. TranslateError is required: the services rely on
// gorm.ErrDuplicatedKey to detect uniqueness conflicts at commit time.
func Connect(dsn string, debug bool) (*gorm.DB, error) {
	logLevel := logger.Silent
	if debug {
		logLevel = logger.Info
	}
	cfg := &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logLevel),
	}

	var conn *gorm.DB
	var err error
	for i := 0; i < 5; i++ {
		conn, err = gorm.Open(postgres.Open(dsn), cfg)
		if err == nil {
			break
		}
		time.Sleep(2 * time.Second)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect database after retries: %w", err)
	}
	if pingErr := conn.Exec("SELECT 1").Error; pingErr != nil {
		return nil, fmt.Errorf("db ping failed: %w", pingErr)
	}
	return conn, nil
}

// Migrate runs AutoMigrate for all models.
// Call this at application startup or as part of a migration step.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		// Tenancy & identity
		&models.Account{},
		&models.Role{},
		&models.User{},
		// Business entities
		&models.Company{},
		&models.Site{},
		&models.Team{},
		// Custom field engine
		&models.CustomField{},
		&models.CustomFieldValue{},
	)
}
