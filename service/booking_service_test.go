package service

import (
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"pawphysio/models"
)

type bookingFixture struct {
	svc     *BookingService
	db      *gorm.DB
	client  models.Profile
	dog     models.Dog
	catalog models.Service
}

func newBookingFixture(t *testing.T) *bookingFixture {
	t.Helper()

	db := newTestDB(t)
	f := &bookingFixture{
		svc: NewBookingService(db, newTestMailer(t, db)),
		db:  db,
		client: models.Profile{
			Email: "ana@example.com", Name: "Ana", Role: models.RoleClient,
			PasswordHash: "x", Language: "es",
		},
		catalog: models.Service{Name: "Hydrotherapy", DurationMin: 45, PriceCents: 4500, Active: true},
	}

	if err := db.Create(&f.client).Error; err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
	f.dog = models.Dog{OwnerID: f.client.ID, Name: "Rex", Breed: "Labrador"}
	if err := db.Create(&f.dog).Error; err != nil {
		t.Fatalf("failed to seed dog: %v", err)
	}
	if err := db.Create(&f.catalog).Error; err != nil {
		t.Fatalf("failed to seed service: %v", err)
	}
	return f
}

func TestBookingService_CreateSchedulesAndLogsEmail(t *testing.T) {
	f := newBookingFixture(t)

	starts := time.Now().Add(48 * time.Hour)
	booking, err := f.svc.Create(f.client.ID, models.BookingCreate{
		DogID:     f.dog.ID,
		ServiceID: f.catalog.ID,
		StartsAt:  starts,
		Notes:     "  first session ",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if booking.ID == "" {
		t.Fatalf("expected generated booking ID")
	}
	if booking.Status != models.BookingScheduled {
		t.Fatalf("expected scheduled, got %q", booking.Status)
	}
	if booking.Notes != "first session" {
		t.Fatalf("expected trimmed notes, got %q", booking.Notes)
	}

	var emails []models.EmailLog
	if err := f.db.Where("booking_id = ?", booking.ID).Find(&emails).Error; err != nil {
		t.Fatalf("failed to read email logs: %v", err)
	}
	if len(emails) != 1 || emails[0].EmailType != models.EmailTypeBookingConfirmation {
		t.Fatalf("expected one confirmation email log, got %+v", emails)
	}
	if emails[0].RecipientEmail != f.client.Email {
		t.Fatalf("confirmation addressed to %q", emails[0].RecipientEmail)
	}
}

func TestBookingService_CreateValidations(t *testing.T) {
	f := newBookingFixture(t)
	future := time.Now().Add(24 * time.Hour)

	// Past start time
	var ve *ValidationError
	_, err := f.svc.Create(f.client.ID, models.BookingCreate{
		DogID: f.dog.ID, ServiceID: f.catalog.ID, StartsAt: time.Now().Add(-time.Hour),
	})
	if !errors.As(err, &ve) || ve.Field != "starts_at" {
		t.Fatalf("expected starts_at validation error, got %v", err)
	}

	// Someone else's dog
	other := models.Profile{Email: "bob@example.com", Name: "Bob", Role: models.RoleClient, PasswordHash: "x"}
	if err := f.db.Create(&other).Error; err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}
	if _, err := f.svc.Create(other.ID, models.BookingCreate{
		DogID: f.dog.ID, ServiceID: f.catalog.ID, StartsAt: future,
	}); err == nil {
		t.Fatalf("expected error booking another client's dog")
	}

	// Inactive service
	f.db.Model(&f.catalog).Update("active", false)
	if _, err := f.svc.Create(f.client.ID, models.BookingCreate{
		DogID: f.dog.ID, ServiceID: f.catalog.ID, StartsAt: future,
	}); err == nil {
		t.Fatalf("expected error booking an inactive service")
	}
}

func TestBookingService_CancelKeepsRow(t *testing.T) {
	f := newBookingFixture(t)

	booking, err := f.svc.Create(f.client.ID, models.BookingCreate{
		DogID: f.dog.ID, ServiceID: f.catalog.ID, StartsAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	cancelled, err := f.svc.Cancel(f.client.ID, booking.ID)
	if err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if cancelled.Status != models.BookingCancelled {
		t.Fatalf("expected cancelled, got %q", cancelled.Status)
	}

	// Row kept, second cancel rejected.
	if _, err := f.svc.Get(f.client.ID, booking.ID); err != nil {
		t.Fatalf("cancelled booking must remain readable: %v", err)
	}
	if _, err := f.svc.Cancel(f.client.ID, booking.ID); !errors.Is(err, ErrBookingNotCancellable) {
		t.Fatalf("expected ErrBookingNotCancellable, got %v", err)
	}

	var emails []models.EmailLog
	f.db.Where("booking_id = ? AND email_type = ?", booking.ID, models.EmailTypeBookingCancellation).Find(&emails)
	if len(emails) != 1 {
		t.Fatalf("expected one cancellation email log, got %d", len(emails))
	}
}

func TestBookingService_OwnershipScoping(t *testing.T) {
	f := newBookingFixture(t)

	booking, err := f.svc.Create(f.client.ID, models.BookingCreate{
		DogID: f.dog.ID, ServiceID: f.catalog.ID, StartsAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := f.svc.Get(f.client.ID+100, booking.ID); err == nil {
		t.Fatalf("expected scoped get to miss for another client")
	}

	// Zero client skips the ownership check (admin path).
	if _, err := f.svc.Get(0, booking.ID); err != nil {
		t.Fatalf("admin get failed: %v", err)
	}
}

func TestBookingService_ListPageFilters(t *testing.T) {
	f := newBookingFixture(t)

	first, err := f.svc.Create(f.client.ID, models.BookingCreate{
		DogID: f.dog.ID, ServiceID: f.catalog.ID, StartsAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := f.svc.Create(f.client.ID, models.BookingCreate{
		DogID: f.dog.ID, ServiceID: f.catalog.ID, StartsAt: time.Now().Add(72 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if _, err := f.svc.Cancel(f.client.ID, first.ID); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	rows, total, err := f.svc.ListPage(BookingFilter{}, 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected 2 bookings, got %d", total)
	}
	if rows[0].ID != second.ID {
		t.Fatalf("expected latest start first, got %s", rows[0].ID)
	}
	if rows[0].ClientName != "Ana" || rows[0].DogName != "Rex" || rows[0].ServiceName != "Hydrotherapy" {
		t.Fatalf("expected joined display fields, got %+v", rows[0])
	}

	rows, total, err = f.svc.ListPage(BookingFilter{Status: models.BookingCancelled}, 1, 10)
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if total != 1 || rows[0].ID != first.ID {
		t.Fatalf("expected only the cancelled booking, got total=%d", total)
	}

	rows, total, err = f.svc.ListPage(BookingFilter{ClientEmail: "ana@"}, 1, 10)
	if err != nil {
		t.Fatalf("email filter failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected substring email match, got total=%d", total)
	}
}

func TestBookingService_SetStatusValidatesName(t *testing.T) {
	f := newBookingFixture(t)

	booking, err := f.svc.Create(f.client.ID, models.BookingCreate{
		DogID: f.dog.ID, ServiceID: f.catalog.ID, StartsAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if _, err := f.svc.SetStatus(booking.ID, "archived"); err == nil {
		t.Fatalf("expected unknown status rejected")
	}

	updated, err := f.svc.SetStatus(booking.ID, models.BookingCompleted)
	if err != nil {
		t.Fatalf("set status failed: %v", err)
	}
	if updated.Status != models.BookingCompleted {
		t.Fatalf("expected completed, got %q", updated.Status)
	}

	// Admin status moves must not generate notification email.
	var emails int64
	f.db.Model(&models.EmailLog{}).Where("email_type = ?", models.EmailTypeBookingCancellation).Count(&emails)
	if emails != 0 {
		t.Fatalf("expected no cancellation email from SetStatus, got %d", emails)
	}
}
