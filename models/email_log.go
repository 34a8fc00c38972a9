package models

import (
	"encoding/json"
	"time"
)

// Email delivery statuses
const (
	EmailSent    = "sent"
	EmailFailed  = "failed"
	EmailPending = "pending"
)

// Email types
const (
	EmailTypeWelcome             = "welcome"
	EmailTypeBookingConfirmation = "booking_confirmation"
	EmailTypeBookingCancellation = "booking_cancellation"
)

// EmailLog records one attempted transactional email send and its outcome.
// A retry never mutates an existing row; the resend writes a new one.
type EmailLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	EmailType      string    `gorm:"size:50;index" json:"email_type"`
	Status         string    `gorm:"size:20;default:'pending';index" json:"status"`
	RecipientEmail string    `gorm:"index" json:"recipient_email"`
	RecipientName  string    `json:"recipient_name"`
	Subject        string    `json:"subject"`
	BookingID      string    `gorm:"index" json:"booking_id,omitempty"`
	UserID         uint      `json:"user_id"`
	Language       string    `gorm:"size:5" json:"language"`
	DataJSON       string    `gorm:"column:email_data;type:text;default:'{}'" json:"-"`
	ErrorDetail    string    `gorm:"type:text" json:"error_detail,omitempty"`
}

func (EmailLog) TableName() string { return "email_logs" }

// GetData returns the template payload the email was rendered from.
func (e *EmailLog) GetData() map[string]interface{} {
	var data map[string]interface{}
	if e.DataJSON != "" {
		_ = json.Unmarshal([]byte(e.DataJSON), &data)
	}
	return data
}

// SetData stores the template payload as JSON.
func (e *EmailLog) SetData(data map[string]interface{}) {
	if data == nil {
		e.DataJSON = "{}"
		return
	}
	raw, _ := json.Marshal(data)
	e.DataJSON = string(raw)
}

// EmailLogRead response model joining booking and profile display fields
type EmailLogRead struct {
	EmailLog
	BookingStartsAt *time.Time `json:"booking_starts_at,omitempty"`
	BookingStatus   string     `json:"booking_status,omitempty"`
	ProfileName     string     `json:"profile_name,omitempty"`
}

// EmailStats is the aggregate over a rolling day window.
type EmailStats struct {
	WindowDays  int     `json:"window_days"`
	Total       int64   `json:"total"`
	Sent        int64   `json:"sent"`
	Failed      int64   `json:"failed"`
	Pending     int64   `json:"pending"`
	SuccessRate float64 `json:"success_rate"`
}
