package service

import (
	"errors"
	"testing"
	"time"

	"pawphysio/models"
)

func seedUserError(t *testing.T, svc *UserErrorService, email, message string) *models.UserError {
	t.Helper()

	ue := &models.UserError{
		UserID:       1,
		UserEmail:    email,
		UserRole:     models.RoleClient,
		ErrorMessage: message,
		Status:       models.UserErrorPending,
	}
	ue.SetContext(map[string]interface{}{"page": "/bookings"})
	if err := svc.db.Create(ue).Error; err != nil {
		t.Fatalf("failed to seed user error: %v", err)
	}
	return ue
}

func TestUserErrorService_ReviewTransitions(t *testing.T) {
	svc := NewUserErrorService(newTestDB(t))
	ue := seedUserError(t, svc, "ana@example.com", "save failed")

	reviewed, err := svc.Review(ue.ID, models.UserErrorValid, "reproduced", "admin@example.com")
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if reviewed.Status != models.UserErrorValid {
		t.Fatalf("expected status valid, got %q", reviewed.Status)
	}
	if reviewed.ReviewedBy != "admin@example.com" || reviewed.ReviewedAt == nil {
		t.Fatalf("expected reviewer identity and timestamp stamped, got %+v", reviewed)
	}

	// Triage mistakes can be corrected: already-reviewed rows accept the
	// other reviewed status.
	corrected, err := svc.Review(ue.ID, models.UserErrorNeedsReview, "needs device info", "admin@example.com")
	if err != nil {
		t.Fatalf("re-review failed: %v", err)
	}
	if corrected.Status != models.UserErrorNeedsReview {
		t.Fatalf("expected status needs_review, got %q", corrected.Status)
	}
}

func TestUserErrorService_ReviewIdempotent(t *testing.T) {
	svc := NewUserErrorService(newTestDB(t))
	ue := seedUserError(t, svc, "ana@example.com", "save failed")

	first, err := svc.Review(ue.ID, models.UserErrorNeedsReview, "cannot reproduce", "admin@example.com")
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	firstAt := *first.ReviewedAt

	time.Sleep(10 * time.Millisecond)

	second, err := svc.Review(ue.ID, models.UserErrorNeedsReview, "cannot reproduce", "admin@example.com")
	if err != nil {
		t.Fatalf("repeat review failed: %v", err)
	}
	if !second.ReviewedAt.Equal(firstAt) {
		t.Fatalf("repeat identical review must not refresh reviewed_at: %v vs %v", second.ReviewedAt, firstAt)
	}

	// Changing the notes is a new review and updates the stamp.
	third, err := svc.Review(ue.ID, models.UserErrorNeedsReview, "reproduced on iOS", "admin@example.com")
	if err != nil {
		t.Fatalf("third review failed: %v", err)
	}
	if third.ReviewedAt.Equal(firstAt) {
		t.Fatalf("changed review should refresh reviewed_at")
	}
}

func TestUserErrorService_ReviewRejectsUnknownStatus(t *testing.T) {
	svc := NewUserErrorService(newTestDB(t))
	ue := seedUserError(t, svc, "ana@example.com", "save failed")

	for _, status := range []string{"pending", "resolved", ""} {
		if _, err := svc.Review(ue.ID, status, "", "admin@example.com"); !errors.Is(err, ErrInvalidReviewStatus) {
			t.Fatalf("status %q: expected ErrInvalidReviewStatus, got %v", status, err)
		}
	}
}

func TestUserErrorService_DeleteReportsNotFound(t *testing.T) {
	svc := NewUserErrorService(newTestDB(t))
	ue := seedUserError(t, svc, "ana@example.com", "save failed")

	found, err := svc.Delete(ue.ID)
	if err != nil || !found {
		t.Fatalf("expected delete found=true err=nil, got found=%v err=%v", found, err)
	}

	found, err = svc.Delete(ue.ID)
	if err != nil {
		t.Fatalf("missing row must not be a storage error: %v", err)
	}
	if found {
		t.Fatalf("expected found=false for already-deleted row")
	}
}

func TestUserErrorService_ListPageFiltersAndOrders(t *testing.T) {
	svc := NewUserErrorService(newTestDB(t))

	older := seedUserError(t, svc, "ana@example.com", "save failed")
	svc.db.Model(older).Update("created_at", time.Now().Add(-2*time.Hour))
	newer := seedUserError(t, svc, "bob@example.com", "upload timed out")

	if _, err := svc.Review(newer.ID, models.UserErrorValid, "", "admin@example.com"); err != nil {
		t.Fatalf("review failed: %v", err)
	}

	rows, total, err := svc.ListPage(UserErrorFilter{}, 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(rows) != 2 {
		t.Fatalf("expected 2 rows, got total=%d len=%d", total, len(rows))
	}
	if rows[0].ID != newer.ID {
		t.Fatalf("expected newest first, got %d", rows[0].ID)
	}

	rows, total, err = svc.ListPage(UserErrorFilter{Status: models.UserErrorPending}, 1, 10)
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if total != 1 || rows[0].ID != older.ID {
		t.Fatalf("expected only the pending row, got total=%d", total)
	}

	rows, total, err = svc.ListPage(UserErrorFilter{UserEmail: "bob", Message: "upload"}, 1, 10)
	if err != nil {
		t.Fatalf("substring filter failed: %v", err)
	}
	if total != 1 || rows[0].ID != newer.ID {
		t.Fatalf("expected substring match on email and message, got total=%d", total)
	}
}
