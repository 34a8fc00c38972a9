package service

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"pawphysio/mailer"
	"pawphysio/models"
)

var ErrEmailNotRetryable = errors.New("only failed emails can be retried")

// EmailLogFilter narrows the email log list. Zero values mean "any".
type EmailLogFilter struct {
	EmailType string
	Status    string
	Recipient string // substring match
	Since     *time.Time
	Until     *time.Time
}

// MailLogService queries delivery logs and re-triggers failed sends.
type MailLogService struct {
	db     *gorm.DB
	mailer *mailer.Mailer
}

// NewMailLogService constructs a mail log service
func NewMailLogService(db *gorm.DB, m *mailer.Mailer) *MailLogService {
	return &MailLogService{db: db, mailer: m}
}

// ListPage returns filtered email logs joined with booking and profile
// display fields, paginated, newest first.
func (s *MailLogService) ListPage(filter EmailLogFilter, page, pageSize int) ([]models.EmailLogRead, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	base := s.db.Model(&models.EmailLog{}).
		Joins("LEFT JOIN bookings ON bookings.id = email_logs.booking_id").
		Joins("LEFT JOIN profiles ON profiles.id = email_logs.user_id")

	if filter.EmailType != "" {
		base = base.Where("email_logs.email_type = ?", filter.EmailType)
	}
	if filter.Status != "" {
		base = base.Where("email_logs.status = ?", filter.Status)
	}
	if filter.Recipient != "" {
		base = base.Where("email_logs.recipient_email LIKE ?", "%"+filter.Recipient+"%")
	}
	if filter.Since != nil {
		base = base.Where("email_logs.created_at >= ?", *filter.Since)
	}
	if filter.Until != nil {
		base = base.Where("email_logs.created_at <= ?", *filter.Until)
	}

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count email logs: %w", err)
	}

	var rows []models.EmailLogRead
	offset := (page - 1) * pageSize
	err := base.
		Select("email_logs.*, bookings.starts_at AS booking_starts_at, bookings.status AS booking_status, profiles.name AS profile_name").
		Order("email_logs.created_at DESC").
		Offset(offset).Limit(pageSize).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list email logs: %w", err)
	}

	return rows, total, nil
}

// Get fetches an email log by ID
func (s *MailLogService) Get(id uint) (*models.EmailLog, error) {
	var entry models.EmailLog
	if err := s.db.First(&entry, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("email log not found: %d", id)
		}
		return nil, fmt.Errorf("failed to get email log: %w", err)
	}
	return &entry, nil
}

// Stats aggregates delivery counts and success rate over a rolling window.
// days <= 0 falls back to 30.
func (s *MailLogService) Stats(days int) (*models.EmailStats, error) {
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().AddDate(0, 0, -days)

	type statusCount struct {
		Status string
		Count  int64
	}

	var counts []statusCount
	err := s.db.Model(&models.EmailLog{}).
		Select("status, COUNT(*) AS count").
		Where("created_at >= ?", cutoff).
		Group("status").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate email stats: %w", err)
	}

	stats := &models.EmailStats{WindowDays: days}
	for _, c := range counts {
		stats.Total += c.Count
		switch c.Status {
		case models.EmailSent:
			stats.Sent = c.Count
		case models.EmailFailed:
			stats.Failed = c.Count
		case models.EmailPending:
			stats.Pending = c.Count
		}
	}
	if stats.Total > 0 {
		stats.SuccessRate = float64(stats.Sent) / float64(stats.Total)
	}

	return stats, nil
}

// Retry re-sends a failed email with its original payload. The original row
// is never mutated; the resend writes a fresh log row. There is no
// idempotency fence: two concurrent retries produce two sends.
func (s *MailLogService) Retry(id uint) (*models.EmailLog, error) {
	original, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if original.Status != models.EmailFailed {
		return nil, ErrEmailNotRetryable
	}

	entry, sendErr := s.mailer.Send(mailer.Message{
		Type:      original.EmailType,
		To:        original.RecipientEmail,
		ToName:    original.RecipientName,
		BookingID: original.BookingID,
		UserID:    original.UserID,
		Language:  original.Language,
		Data:      original.GetData(),
	})
	if sendErr != nil {
		// The new row records the failure; surface it so the caller can
		// report the retry outcome.
		return entry, fmt.Errorf("retry send failed: %w", sendErr)
	}

	return entry, nil
}
