package repository

import (
	"fmt"
	"log"
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/tipdrop/tipdrop/internal/models"
	"github.com/tipdrop/tipdrop/pkg/logger"
)

// Open connects to PostgreSQL and migrates the schema. The returned handle is
// shared by the scoped stores created with NewAdminStore and NewUserStore.
func Open(user, password, dbname, host string, port int, logger *logger.Logger) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable",
		host, user, password, dbname, port)

	// Configure GORM logger to suppress "record not found" messages
	gormLogger := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags), // Use standard logger
		gormLogger.Config{
			SlowThreshold:             200 * time.Millisecond, // Log queries slower than this
			LogLevel:                  gormLogger.Warn,        // Only log warnings or errors
			IgnoreRecordNotFoundError: true,                   // Suppress "record not found" errors
			Colorful:                  true,                   // Enable colorful logs
		},
	)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: gormLogger})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %s", err)
	}

	if err := db.AutoMigrate(&models.Profile{}, &models.Donation{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate models: %s", err)
	}
	logger.Info("Successfully connected to PostgreSQL!")
	return db, nil
}

// Close closes the underlying database connection.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get database connection: %s", err)
	}
	return sqlDB.Close()
}
