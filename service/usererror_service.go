package service

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pawphysio/models"
)

var ErrInvalidReviewStatus = errors.New("review status must be valid or needs_review")

// UserErrorFilter narrows the triage list. Zero values mean "any".
type UserErrorFilter struct {
	Status    string
	UserEmail string // substring match
	UserRole  string
	Message   string // substring match
	Since     *time.Time
	Until     *time.Time
}

// UserErrorService handles triage of user-reported errors. Rows are written
// by the capture pipeline; this service only queries, reviews and deletes.
type UserErrorService struct {
	db *gorm.DB
}

// NewUserErrorService constructs a user error service
func NewUserErrorService(db *gorm.DB) *UserErrorService {
	return &UserErrorService{db: db}
}

// ListPage returns filtered user errors with pagination, newest first,
// together with the total count matching the filter.
func (s *UserErrorService) ListPage(filter UserErrorFilter, page, pageSize int) ([]models.UserError, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	base := s.db.Model(&models.UserError{})
	if filter.Status != "" {
		base = base.Where("status = ?", filter.Status)
	}
	if filter.UserEmail != "" {
		base = base.Where("user_email LIKE ?", "%"+filter.UserEmail+"%")
	}
	if filter.UserRole != "" {
		base = base.Where("user_role = ?", filter.UserRole)
	}
	if filter.Message != "" {
		base = base.Where("error_message LIKE ?", "%"+filter.Message+"%")
	}
	if filter.Since != nil {
		base = base.Where("created_at >= ?", *filter.Since)
	}
	if filter.Until != nil {
		base = base.Where("created_at <= ?", *filter.Until)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count user errors: %w", err)
	}

	var rows []models.UserError
	offset := (page - 1) * pageSize
	if err := base.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list user errors: %w", err)
	}

	return rows, total, nil
}

// Get fetches a user error by ID
func (s *UserErrorService) Get(id uint) (*models.UserError, error) {
	var ue models.UserError
	if err := s.db.First(&ue, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user error not found: %d", id)
		}
		return nil, fmt.Errorf("failed to get user error: %w", err)
	}
	return &ue, nil
}

// Review stamps reviewer identity, timestamp, status and notes. Only
// valid/needs_review may be assigned; a repeat call with identical
// arguments leaves the stored row unchanged (idempotent).
func (s *UserErrorService) Review(id uint, status, notes, reviewer string) (*models.UserError, error) {
	if !models.ValidUserErrorStatus(status) {
		return nil, ErrInvalidReviewStatus
	}

	ue, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	// Idempotency: skip the write when nothing would change.
	if ue.Status == status && ue.ReviewNotes == notes && ue.ReviewedBy == reviewer {
		return ue, nil
	}

	now := time.Now()
	ue.Status = status
	ue.ReviewNotes = notes
	ue.ReviewedBy = reviewer
	ue.ReviewedAt = &now

	if err := s.db.Save(ue).Error; err != nil {
		return nil, fmt.Errorf("failed to review user error: %w", err)
	}
	return ue, nil
}

// Delete hard-deletes a user error. found is false when no row matched the
// ID, so callers can distinguish "not found" from a storage failure.
func (s *UserErrorService) Delete(id uint) (found bool, err error) {
	res := s.db.Delete(&models.UserError{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete user error: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}
