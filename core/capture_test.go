package core

import (
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"pawphysio/config"
	"pawphysio/models"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.UserError{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return db
}

func TestCapturer_DropsWhenQueueUnavailable(t *testing.T) {
	db := newTestDB(t)

	c := &Capturer{db: db}
	c.running = true

	if ok := c.Capture(1, "user@example.com", models.RoleClient, "boom", "ua", nil); ok {
		t.Fatalf("expected capture to drop without a queue")
	}
	if got := c.DroppedTotal(); got != 1 {
		t.Fatalf("expected dropped_total=1, got %d", got)
	}
}

func TestCapturer_NoOpWithoutMessageOrUser(t *testing.T) {
	db := newTestDB(t)

	oldEnabled := config.Settings.CaptureEnabled
	oldSize := config.Settings.CaptureQueueSize
	t.Cleanup(func() {
		config.Settings.CaptureEnabled = oldEnabled
		config.Settings.CaptureQueueSize = oldSize
	})
	config.Settings.CaptureEnabled = true
	config.Settings.CaptureQueueSize = 10

	c := NewCapturer(db)
	c.Start()
	t.Cleanup(c.Stop)

	if ok := c.Capture(1, "user@example.com", models.RoleClient, "", "ua", nil); ok {
		t.Fatalf("expected empty message to be ignored")
	}
	if ok := c.Capture(0, "", "", "boom", "ua", nil); ok {
		t.Fatalf("expected anonymous report to be ignored")
	}
	if got := c.DroppedTotal(); got != 0 {
		t.Fatalf("silent no-ops must not count as drops, got %d", got)
	}
}

func TestCapturer_PersistsQueuedEvents(t *testing.T) {
	db := newTestDB(t)

	oldEnabled := config.Settings.CaptureEnabled
	oldSize := config.Settings.CaptureQueueSize
	t.Cleanup(func() {
		config.Settings.CaptureEnabled = oldEnabled
		config.Settings.CaptureQueueSize = oldSize
	})
	config.Settings.CaptureEnabled = true
	config.Settings.CaptureQueueSize = 10

	c := NewCapturer(db)
	c.Start()

	if ok := c.Capture(7, "user@example.com", models.RoleClient, "form submit failed", "Mozilla/5.0", map[string]interface{}{"page": "/bookings"}); !ok {
		t.Fatalf("expected capture accepted")
	}

	// Stop drains the queue before returning.
	c.Stop()

	var rows []models.UserError
	if err := db.Find(&rows).Error; err != nil {
		t.Fatalf("failed to read user errors: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 persisted user error, got %d", len(rows))
	}

	ue := rows[0]
	if ue.UserID != 7 || ue.UserEmail != "user@example.com" || ue.ErrorMessage != "form submit failed" {
		t.Fatalf("unexpected row: %+v", ue)
	}
	if ue.Status != models.UserErrorPending {
		t.Fatalf("expected status pending, got %q", ue.Status)
	}

	ctx := ue.GetContext()
	if ctx["page"] != "/bookings" {
		t.Fatalf("expected context page preserved, got %v", ctx)
	}
	if _, ok := ctx["timestamp"]; !ok {
		t.Fatalf("expected capture to stamp a timestamp")
	}
}

func TestCapturer_CaptureRacingStopDropsInsteadOfPanicking(t *testing.T) {
	db := newTestDB(t)

	oldEnabled := config.Settings.CaptureEnabled
	oldSize := config.Settings.CaptureQueueSize
	t.Cleanup(func() {
		config.Settings.CaptureEnabled = oldEnabled
		config.Settings.CaptureQueueSize = oldSize
	})
	config.Settings.CaptureEnabled = true
	config.Settings.CaptureQueueSize = 4

	c := NewCapturer(db)

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					c.Capture(1, "user@example.com", models.RoleClient, "boom", "ua", nil)
				}
			}
		}()
	}

	// An enqueue racing Stop must drop, never send on the closed channel.
	for i := 0; i < 500; i++ {
		c.Start()
		c.Stop()
	}
	close(stop)
	wg.Wait()
}

func TestCapturer_StartDisabledByConfig(t *testing.T) {
	db := newTestDB(t)

	oldEnabled := config.Settings.CaptureEnabled
	t.Cleanup(func() {
		config.Settings.CaptureEnabled = oldEnabled
	})
	config.Settings.CaptureEnabled = false

	c := NewCapturer(db)
	c.Start()

	if ok := c.Capture(1, "user@example.com", models.RoleClient, "boom", "ua", nil); ok {
		t.Fatalf("expected capture rejected while disabled")
	}

	// Stop on a never-started pipeline must not panic or block.
	c.Stop()
}
