package repository

import (
	"testing"

	integrationdomain "timesheetpro-backend/internal/integration/domain"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&integrationdomain.IntegrationConfig{}, &integrationdomain.ProcessedFile{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}
