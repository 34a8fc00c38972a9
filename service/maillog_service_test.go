package service

import (
	"errors"
	"testing"
	"time"

	"pawphysio/models"
)

func seedEmailLog(t *testing.T, svc *MailLogService, status string, createdAt time.Time) *models.EmailLog {
	t.Helper()

	entry := &models.EmailLog{
		CreatedAt:      createdAt,
		EmailType:      models.EmailTypeWelcome,
		Status:         status,
		RecipientEmail: "ana@example.com",
		RecipientName:  "Ana",
		Subject:        "Welcome",
		UserID:         1,
		Language:       "es",
	}
	entry.SetData(map[string]interface{}{"Name": "Ana"})
	if err := svc.db.Create(entry).Error; err != nil {
		t.Fatalf("failed to seed email log: %v", err)
	}
	return entry
}

func TestMailLogService_StatsRollingWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewMailLogService(db, newTestMailer(t, db))

	now := time.Now()
	seedEmailLog(t, svc, models.EmailSent, now)
	seedEmailLog(t, svc, models.EmailSent, now.Add(-time.Hour))
	seedEmailLog(t, svc, models.EmailFailed, now.Add(-24*time.Hour))
	// Outside the 30 day window; must not count.
	seedEmailLog(t, svc, models.EmailSent, now.AddDate(0, 0, -40))

	stats, err := svc.Stats(30)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.WindowDays != 30 {
		t.Fatalf("expected window 30, got %d", stats.WindowDays)
	}
	if stats.Total != 3 || stats.Sent != 2 || stats.Failed != 1 || stats.Pending != 0 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	want := 2.0 / 3.0
	if diff := stats.SuccessRate - want; diff > 0.001 || diff < -0.001 {
		t.Fatalf("expected success rate %.3f, got %.3f", want, stats.SuccessRate)
	}
}

func TestMailLogService_StatsDefaultsWindow(t *testing.T) {
	db := newTestDB(t)
	svc := NewMailLogService(db, newTestMailer(t, db))

	stats, err := svc.Stats(0)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if stats.WindowDays != 30 {
		t.Fatalf("expected default window 30, got %d", stats.WindowDays)
	}
	if stats.Total != 0 || stats.SuccessRate != 0 {
		t.Fatalf("expected empty stats, got %+v", stats)
	}
}

func TestMailLogService_RetryWritesNewRow(t *testing.T) {
	db := newTestDB(t)
	svc := NewMailLogService(db, newTestMailer(t, db))

	original := seedEmailLog(t, svc, models.EmailFailed, time.Now())

	entry, err := svc.Retry(original.ID)
	if err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if entry.ID == original.ID {
		t.Fatalf("retry must write a new row, got the original ID %d", entry.ID)
	}
	if entry.Status != models.EmailSent {
		t.Fatalf("expected resend recorded as sent, got %q", entry.Status)
	}
	if entry.RecipientEmail != original.RecipientEmail || entry.EmailType != original.EmailType {
		t.Fatalf("resend must reuse the original payload: %+v", entry)
	}

	// Original row untouched.
	var kept models.EmailLog
	if err := db.First(&kept, original.ID).Error; err != nil {
		t.Fatalf("failed to reload original: %v", err)
	}
	if kept.Status != models.EmailFailed {
		t.Fatalf("original row must stay failed, got %q", kept.Status)
	}

	var count int64
	db.Model(&models.EmailLog{}).Count(&count)
	if count != 2 {
		t.Fatalf("expected 2 rows after retry, got %d", count)
	}
}

func TestMailLogService_RetryOnlyFailed(t *testing.T) {
	db := newTestDB(t)
	svc := NewMailLogService(db, newTestMailer(t, db))

	sent := seedEmailLog(t, svc, models.EmailSent, time.Now())
	if _, err := svc.Retry(sent.ID); !errors.Is(err, ErrEmailNotRetryable) {
		t.Fatalf("expected ErrEmailNotRetryable, got %v", err)
	}

	pending := seedEmailLog(t, svc, models.EmailPending, time.Now())
	if _, err := svc.Retry(pending.ID); !errors.Is(err, ErrEmailNotRetryable) {
		t.Fatalf("expected ErrEmailNotRetryable for pending, got %v", err)
	}

	if _, err := svc.Retry(9999); err == nil {
		t.Fatalf("expected error for unknown email log")
	}
}

func TestMailLogService_ListPageJoinsBookingContext(t *testing.T) {
	db := newTestDB(t)
	svc := NewMailLogService(db, newTestMailer(t, db))

	profile := models.Profile{Email: "ana@example.com", Name: "Ana", Role: models.RoleClient, PasswordHash: "x"}
	if err := db.Create(&profile).Error; err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}

	starts := time.Now().Add(48 * time.Hour).Truncate(time.Second)
	booking := models.Booking{
		ID:        "b-1",
		ClientID:  profile.ID,
		DogID:     1,
		ServiceID: 1,
		StartsAt:  starts,
		Status:    models.BookingScheduled,
	}
	if err := db.Create(&booking).Error; err != nil {
		t.Fatalf("failed to seed booking: %v", err)
	}

	entry := &models.EmailLog{
		EmailType:      models.EmailTypeBookingConfirmation,
		Status:         models.EmailSent,
		RecipientEmail: profile.Email,
		BookingID:      booking.ID,
		UserID:         profile.ID,
		Language:       "es",
	}
	entry.SetData(nil)
	if err := db.Create(entry).Error; err != nil {
		t.Fatalf("failed to seed email log: %v", err)
	}

	rows, total, err := svc.ListPage(EmailLogFilter{EmailType: models.EmailTypeBookingConfirmation}, 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("expected 1 row, got total=%d len=%d", total, len(rows))
	}

	got := rows[0]
	if got.ProfileName != "Ana" {
		t.Fatalf("expected joined profile name, got %q", got.ProfileName)
	}
	if got.BookingStatus != models.BookingScheduled {
		t.Fatalf("expected joined booking status, got %q", got.BookingStatus)
	}
	if got.BookingStartsAt == nil || !got.BookingStartsAt.Equal(starts) {
		t.Fatalf("expected joined booking start %v, got %v", starts, got.BookingStartsAt)
	}
}
