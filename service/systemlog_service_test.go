package service

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"pawphysio/models"
)

func seedErrorLog(t *testing.T, svc *SystemLogService, errorType, component, message string) *models.ErrorLog {
	t.Helper()

	entry := &models.ErrorLog{
		UserEmail:    "ana@example.com",
		ErrorType:    errorType,
		ErrorCode:    "E100",
		ErrorMessage: message,
		Component:    component,
		UserAgent:    "Mozilla/5.0",
	}
	if err := svc.db.Create(entry).Error; err != nil {
		t.Fatalf("failed to seed error log: %v", err)
	}
	return entry
}

func TestSystemLogService_ListPageFilters(t *testing.T) {
	svc := NewSystemLogService(newTestDB(t))

	older := seedErrorLog(t, svc, "ERROR", "mailer", "smtp timeout")
	svc.db.Model(older).Update("created_at", time.Now().Add(-time.Hour))
	newer := seedErrorLog(t, svc, "WARN", "bookings", "slow query")

	rows, total, err := svc.ListPage(SystemLogFilter{}, 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || rows[0].ID != newer.ID {
		t.Fatalf("expected 2 rows newest first, got total=%d first=%d", total, rows[0].ID)
	}

	rows, total, err = svc.ListPage(SystemLogFilter{ErrorType: "ERROR", Component: "mailer"}, 1, 10)
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if total != 1 || rows[0].ID != older.ID {
		t.Fatalf("expected only the mailer error, got total=%d", total)
	}

	rows, total, err = svc.ListPage(SystemLogFilter{Message: "slow"}, 1, 10)
	if err != nil {
		t.Fatalf("substring filter failed: %v", err)
	}
	if total != 1 || rows[0].ID != newer.ID {
		t.Fatalf("expected substring match, got total=%d", total)
	}
}

func TestSystemLogService_DeleteAndClear(t *testing.T) {
	svc := NewSystemLogService(newTestDB(t))

	entry := seedErrorLog(t, svc, "ERROR", "mailer", "smtp timeout")
	seedErrorLog(t, svc, "ERROR", "bookings", "constraint violation")

	found, err := svc.Delete(entry.ID)
	if err != nil || !found {
		t.Fatalf("expected delete found=true err=nil, got found=%v err=%v", found, err)
	}
	found, err = svc.Delete(entry.ID)
	if err != nil || found {
		t.Fatalf("expected found=false for missing row, got found=%v err=%v", found, err)
	}

	deleted, err := svc.ClearAll()
	if err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("expected 1 remaining row cleared, got %d", deleted)
	}

	count, err := svc.Count()
	if err != nil || count != 0 {
		t.Fatalf("expected empty table, got count=%d err=%v", count, err)
	}
}

func TestSystemLogService_ExportJSON(t *testing.T) {
	svc := NewSystemLogService(newTestDB(t))
	seedErrorLog(t, svc, "ERROR", "mailer", "smtp timeout")

	rows, _, err := svc.ListPage(SystemLogFilter{}, 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	data, err := svc.ExportJSON(rows)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var decoded []models.ErrorLog
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(decoded) != 1 || decoded[0].ErrorMessage != "smtp timeout" {
		t.Fatalf("unexpected export content: %+v", decoded)
	}
}

func TestSystemLogService_ExportCSV(t *testing.T) {
	svc := NewSystemLogService(newTestDB(t))
	seedErrorLog(t, svc, "ERROR", "mailer", "smtp timeout")

	rows, _, err := svc.ListPage(SystemLogFilter{}, 1, 10)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	data, err := svc.ExportCSV(rows)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus 1 row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,created_at,") {
		t.Fatalf("unexpected CSV header: %q", lines[0])
	}
	if !strings.Contains(lines[1], "smtp timeout") || !strings.Contains(lines[1], "mailer") {
		t.Fatalf("unexpected CSV row: %q", lines[1])
	}
}
