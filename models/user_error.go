package models

import (
	"encoding/json"
	"time"
)

// UserError review statuses. New rows always start as pending and only an
// explicit admin review moves them to valid or needs_review.
const (
	UserErrorPending     = "pending"
	UserErrorValid       = "valid"
	UserErrorNeedsReview = "needs_review"
)

// UserError is a front-end-captured, user-visible failure awaiting triage.
type UserError struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"index" json:"user_id"`
	UserEmail    string     `gorm:"index" json:"user_email"`
	UserRole     string     `json:"user_role"`
	ErrorMessage string     `gorm:"type:text;not null" json:"error_message"`
	ContextJSON  string     `gorm:"column:error_context;type:text;default:'{}'" json:"-"`
	UserAgent    string     `json:"user_agent"`
	Status       string     `gorm:"default:'pending';index" json:"status"`
	ReviewedBy   string     `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	ReviewNotes  string     `gorm:"type:text" json:"review_notes,omitempty"`
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`
}

func (UserError) TableName() string { return "user_errors" }

// GetContext returns the context map (page, timestamp, language plus caller keys).
func (u *UserError) GetContext() map[string]interface{} {
	var ctx map[string]interface{}
	if u.ContextJSON != "" {
		_ = json.Unmarshal([]byte(u.ContextJSON), &ctx)
	}
	return ctx
}

// SetContext stores the context map as JSON.
func (u *UserError) SetContext(ctx map[string]interface{}) {
	if ctx == nil {
		u.ContextJSON = "{}"
		return
	}
	data, _ := json.Marshal(ctx)
	u.ContextJSON = string(data)
}

// ValidUserErrorStatus reports whether s is a status a review may assign.
func ValidUserErrorStatus(s string) bool {
	switch s {
	case UserErrorValid, UserErrorNeedsReview:
		return true
	}
	return false
}

// UserErrorReview request payload for the admin review action
type UserErrorReview struct {
	Status string `json:"status" binding:"required"`
	Notes  string `json:"notes"`
}
