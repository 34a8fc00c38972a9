package models

import "time"

// ErrorLog is a server-generated technical error record.
// The API exposes it read-only apart from single delete and bulk clear.
type ErrorLog struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `gorm:"index" json:"created_at"`
	UserID         uint      `json:"user_id"`
	UserEmail      string    `gorm:"index" json:"user_email"`
	ErrorType      string    `gorm:"size:50;index" json:"error_type"` // ERROR, WARN, FATAL
	ErrorCode      string    `gorm:"size:50" json:"error_code"`
	ErrorMessage   string    `gorm:"type:text" json:"error_message"`
	Component      string    `gorm:"size:100;index" json:"component"`
	StackTrace     string    `gorm:"type:text" json:"stack_trace"`
	AdditionalData string    `gorm:"type:text" json:"additional_data"` // JSON extra data
	UserAgent      string    `json:"user_agent"`
}

func (ErrorLog) TableName() string { return "error_logs" }
