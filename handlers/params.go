package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"pawphysio/config"
)

// pagination reads page/page_size query params with defaults and caps
// page_size at the configured maximum.
func pagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	if sizeStr := c.Query("page_size"); sizeStr != "" {
		if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 {
			pageSize = s
		}
	}
	if max := config.Settings.MaxPageSize; max > 0 && pageSize > max {
		pageSize = max
	}
	return page, pageSize
}

// parseTimeParam accepts a unix timestamp or RFC3339 string. Empty input
// yields (nil, nil).
func parseTimeParam(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if unix, err := strconv.ParseInt(value, 10, 64); err == nil {
		tm := time.Unix(unix, 0)
		return &tm, nil
	}
	tm, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, err
	}
	return &tm, nil
}

// parseUintParam parses a positive integer path parameter.
func parseUintParam(value string) (uint, bool) {
	id, err := strconv.ParseUint(value, 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}
