package database

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pawphysio/models"
)

func newSettingsTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.AppSetting{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	old := DB
	DB = db
	t.Cleanup(func() { DB = old })
}

func TestSettingsRoundTrip(t *testing.T) {
	newSettingsTestDB(t)

	if _, ok, err := GetSetting(SettingInstallBannerEnable); err != nil || ok {
		t.Fatalf("expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := SetSetting(SettingInstallBannerEnable, " false "); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	val, ok, err := GetSetting(SettingInstallBannerEnable)
	if err != nil || !ok {
		t.Fatalf("expected stored key, got ok=%v err=%v", ok, err)
	}
	if val != "false" {
		t.Fatalf("expected trimmed value, got %q", val)
	}

	// Overwrite keeps a single row per key.
	if err := SetSetting(SettingInstallBannerEnable, "true"); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}
	if val, _, _ := GetSetting(SettingInstallBannerEnable); val != "true" {
		t.Fatalf("expected overwritten value, got %q", val)
	}

	if err := DeleteSetting(SettingInstallBannerEnable); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, ok, _ := GetSetting(SettingInstallBannerEnable); ok {
		t.Fatalf("expected key gone after delete")
	}

	// Deleting a missing key is a no-op.
	if err := DeleteSetting(SettingInstallBannerEnable); err != nil {
		t.Fatalf("repeat delete failed: %v", err)
	}
}

func TestSettingsRejectEmptyKey(t *testing.T) {
	newSettingsTestDB(t)

	if err := SetSetting("  ", "x"); err == nil {
		t.Fatalf("expected empty key rejected on set")
	}
	if _, _, err := GetSetting(""); err == nil {
		t.Fatalf("expected empty key rejected on get")
	}
	if err := DeleteSetting(""); err == nil {
		t.Fatalf("expected empty key rejected on delete")
	}
}
