package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"pawphysio/config"
	"pawphysio/core"
	"pawphysio/middleware"
	"pawphysio/models"
	"pawphysio/service"
)

// CaptureUserError accepts a user-reported error and enqueues it for
// asynchronous persistence. Always 202: capture must never fail the client.
func CaptureUserError(c *gin.Context) {
	userID, userEmail, userRole := middleware.CurrentUser(c)

	var req struct {
		Message string                 `json:"message"`
		Context map[string]interface{} `json:"context"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	accepted := false
	if core.CaptureInstance != nil {
		accepted = core.CaptureInstance.Capture(userID, userEmail, userRole, req.Message, c.GetHeader("User-Agent"), req.Context)
	}

	c.JSON(http.StatusAccepted, gin.H{"accepted": accepted})
}

// ListUserErrors returns filtered user errors for triage
func ListUserErrors(c *gin.Context) {
	since, err := parseTimeParam(c.Query("since"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid since: use unix seconds or RFC3339"})
		return
	}
	until, err := parseTimeParam(c.Query("until"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid until: use unix seconds or RFC3339"})
		return
	}

	filter := service.UserErrorFilter{
		Status:    c.Query("status"),
		UserEmail: c.Query("user_email"),
		UserRole:  c.Query("user_role"),
		Message:   c.Query("message"),
		Since:     since,
		Until:     until,
	}

	page, pageSize := pagination(c)
	rows, total, err := service.GlobalServices.UserError.ListPage(filter, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      rows,
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	})
}

// ReviewUserError marks a user error valid or needs_review
func ReviewUserError(c *gin.Context) {
	id, ok := parseUintParam(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid user error ID"})
		return
	}

	var req models.UserErrorReview
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	_, reviewerEmail, _ := middleware.CurrentUser(c)

	ue, err := service.GlobalServices.UserError.Review(id, req.Status, req.Notes, reviewerEmail)
	if err != nil {
		if errors.Is(err, service.ErrInvalidReviewStatus) {
			c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, ue)
}

// DeleteUserError removes one user error
func DeleteUserError(c *gin.Context) {
	id, ok := parseUintParam(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid user error ID"})
		return
	}

	found, err := service.GlobalServices.UserError.Delete(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"detail": fmt.Sprintf("user error not found: %d", id)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func systemLogFilter(c *gin.Context) (service.SystemLogFilter, error) {
	since, err := parseTimeParam(c.Query("since"))
	if err != nil {
		return service.SystemLogFilter{}, errors.New("Invalid since: use unix seconds or RFC3339")
	}
	until, err := parseTimeParam(c.Query("until"))
	if err != nil {
		return service.SystemLogFilter{}, errors.New("Invalid until: use unix seconds or RFC3339")
	}

	return service.SystemLogFilter{
		ErrorType: c.Query("error_type"),
		ErrorCode: c.Query("error_code"),
		Component: c.Query("component"),
		UserEmail: c.Query("user_email"),
		Message:   c.Query("message"),
		Since:     since,
		Until:     until,
	}, nil
}

// ListErrorLogs returns filtered technical error logs
func ListErrorLogs(c *gin.Context) {
	filter, err := systemLogFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	page, pageSize := pagination(c)
	rows, total, err := service.GlobalServices.SystemLog.ListPage(filter, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      rows,
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	})
}

// DeleteErrorLog removes one technical error log
func DeleteErrorLog(c *gin.Context) {
	id, ok := parseUintParam(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid error log ID"})
		return
	}

	found, err := service.GlobalServices.SystemLog.Delete(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	if !found {
		c.JSON(http.StatusNotFound, gin.H{"detail": fmt.Sprintf("error log not found: %d", id)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ClearErrorLogs deletes every technical error log (superadmin)
func ClearErrorLogs(c *gin.Context) {
	deleted, err := service.GlobalServices.SystemLog.ClearAll()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "deleted": deleted})
}

// ExportErrorLogs streams the current filtered page as a JSON or CSV
// download. format defaults to json.
func ExportErrorLogs(c *gin.Context) {
	filter, err := systemLogFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	page, pageSize := pagination(c)
	rows, _, err := service.GlobalServices.SystemLog.ListPage(filter, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	stamp := time.Now().Format("2006-01-02")
	switch c.DefaultQuery("format", "json") {
	case "json":
		data, err := service.GlobalServices.SystemLog.ExportJSON(rows)
		if err != nil {
			core.LogErrorSimple("ErrorLogs", fmt.Sprintf("JSON export failed: %v", err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="error-logs-%s.json"`, stamp))
		c.Data(http.StatusOK, "application/json", data)
	case "csv":
		data, err := service.GlobalServices.SystemLog.ExportCSV(rows)
		if err != nil {
			core.LogErrorSimple("ErrorLogs", fmt.Sprintf("CSV export failed: %v", err))
			c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="error-logs-%s.csv"`, stamp))
		c.Data(http.StatusOK, "text/csv", data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Unknown format: use json or csv"})
	}
}

// ListEmailLogs returns filtered email delivery logs with booking context
func ListEmailLogs(c *gin.Context) {
	since, err := parseTimeParam(c.Query("since"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid since: use unix seconds or RFC3339"})
		return
	}
	until, err := parseTimeParam(c.Query("until"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid until: use unix seconds or RFC3339"})
		return
	}

	filter := service.EmailLogFilter{
		EmailType: c.Query("email_type"),
		Status:    c.Query("status"),
		Recipient: c.Query("recipient"),
		Since:     since,
		Until:     until,
	}

	page, pageSize := pagination(c)
	rows, total, err := service.GlobalServices.MailLog.ListPage(filter, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":      rows,
		"page":      page,
		"page_size": pageSize,
		"total":     total,
	})
}

// EmailStats aggregates delivery counts over a rolling window
func EmailStats(c *gin.Context) {
	days := config.Settings.EmailStatsDays
	if daysStr := c.Query("days"); daysStr != "" {
		d, err := strconv.Atoi(daysStr)
		if err != nil || d <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid days: must be a positive integer"})
			return
		}
		days = d
	}

	stats, err := service.GlobalServices.MailLog.Stats(days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// RetryEmail re-sends a failed email; the resend writes a fresh log row
func RetryEmail(c *gin.Context) {
	id, ok := parseUintParam(c.Param("id"))
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid email log ID"})
		return
	}

	entry, err := service.GlobalServices.MailLog.Retry(id)
	if err != nil {
		if errors.Is(err, service.ErrEmailNotRetryable) {
			c.JSON(http.StatusConflict, gin.H{"detail": err.Error()})
			return
		}
		if entry != nil {
			// Resend attempted and failed; report it with the new log row.
			c.JSON(http.StatusBadGateway, gin.H{"detail": err.Error(), "log": entry})
			return
		}
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true, "log": entry})
}
