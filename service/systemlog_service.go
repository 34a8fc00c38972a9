package service

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"pawphysio/models"
)

// SystemLogFilter narrows the technical log list. Zero values mean "any".
type SystemLogFilter struct {
	ErrorType string
	ErrorCode string
	Component string
	UserEmail string // substring match
	Message   string // substring match
	Since     *time.Time
	Until     *time.Time
}

// SystemLogService queries and prunes server-generated error logs.
type SystemLogService struct {
	db *gorm.DB
}

// NewSystemLogService constructs a system log service
func NewSystemLogService(db *gorm.DB) *SystemLogService {
	return &SystemLogService{db: db}
}

// ListPage returns filtered error logs with pagination, newest first.
func (s *SystemLogService) ListPage(filter SystemLogFilter, page, pageSize int) ([]models.ErrorLog, int64, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	base := s.db.Model(&models.ErrorLog{})
	if filter.ErrorType != "" {
		base = base.Where("error_type = ?", filter.ErrorType)
	}
	if filter.ErrorCode != "" {
		base = base.Where("error_code = ?", filter.ErrorCode)
	}
	if filter.Component != "" {
		base = base.Where("component = ?", filter.Component)
	}
	if filter.UserEmail != "" {
		base = base.Where("user_email LIKE ?", "%"+filter.UserEmail+"%")
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
		return nil, 0, fmt.Errorf("failed to count error logs: %w", err)
	}

	var rows []models.ErrorLog
	offset := (page - 1) * pageSize
	if err := base.Order("created_at DESC").Offset(offset).Limit(pageSize).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list error logs: %w", err)
	}

	return rows, total, nil
}

// Delete removes one error log. found is false when no row matched.
func (s *SystemLogService) Delete(id uint) (found bool, err error) {
	res := s.db.Delete(&models.ErrorLog{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete error log: %w", res.Error)
	}
	return res.RowsAffected > 0, nil
}

// ClearAll unconditionally deletes every error log and returns the count.
func (s *SystemLogService) ClearAll() (int64, error) {
	res := s.db.Where("1 = 1").Delete(&models.ErrorLog{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear error logs: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// ExportJSON serializes the given rows (the currently loaded page, not the
// full remote set) as indented JSON.
func (s *SystemLogService) ExportJSON(rows []models.ErrorLog) ([]byte, error) {
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize error logs: %w", err)
	}
	return data, nil
}

// ExportCSV serializes the given rows as CSV with a header line.
func (s *SystemLogService) ExportCSV(rows []models.ErrorLog) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := []string{"id", "created_at", "user_id", "user_email", "error_type", "error_code", "error_message", "component", "user_agent"}
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, row := range rows {
		record := []string{
			strconv.FormatUint(uint64(row.ID), 10),
			row.CreatedAt.Format(time.RFC3339),
			strconv.FormatUint(uint64(row.UserID), 10),
			row.UserEmail,
			row.ErrorType,
			row.ErrorCode,
			row.ErrorMessage,
			row.Component,
			row.UserAgent,
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// Count returns the total number of error logs.
func (s *SystemLogService) Count() (int64, error) {
	var total int64
	if err := s.db.Model(&models.ErrorLog{}).Count(&total).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to count error logs: %w", err)
	}
	return total, nil
}
