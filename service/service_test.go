package service

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pawphysio/config"
	"pawphysio/database"
	"pawphysio/mailer"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

// newTestMailer returns a mailer that records log rows without contacting SMTP.
func newTestMailer(t *testing.T, db *gorm.DB) *mailer.Mailer {
	t.Helper()

	old := config.Settings.EmailSendDisabled
	t.Cleanup(func() {
		config.Settings.EmailSendDisabled = old
	})
	config.Settings.EmailSendDisabled = true

	return mailer.New(db)
}
