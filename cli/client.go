package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"pawphysio/models"
)

// Client is the HTTP client for talking to the clinic server
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new HTTP client
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken sets the bearer token used for authenticated endpoints
func (c *Client) SetToken(token string) {
	c.token = token
}

// doRequest executes an HTTP request
func (c *Client) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}

	return resp, nil
}

// handleResponse handles an HTTP response
func (c *Client) handleResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %v", err)
		}
	}

	return nil
}

// HealthCheck pings the health endpoint
func (c *Client) HealthCheck() error {
	resp, err := c.doRequest("GET", "/api/health", nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return fmt.Errorf("server unhealthy: HTTP %d", resp.StatusCode)
	}

	return nil
}

// Login exchanges credentials for an API token and keeps it on the client
func (c *Client) Login(email, password string) (string, error) {
	resp, err := c.doRequest("POST", "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return "", err
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := c.handleResponse(resp, &result); err != nil {
		return "", err
	}

	c.token = result.Token
	return result.Token, nil
}

func pagedPath(base string, page, pageSize int, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	query.Set("page", fmt.Sprintf("%d", page))
	query.Set("page_size", fmt.Sprintf("%d", pageSize))
	return base + "?" + query.Encode()
}

// Booking admin API

// BookingsResponse paginated booking list
type BookingsResponse struct {
	Data     []models.BookingRead `json:"data"`
	Page     int                  `json:"page"`
	PageSize int                  `json:"page_size"`
	Total    int64                `json:"total"`
}

// ListBookings fetches paginated bookings, optionally filtered by status
func (c *Client) ListBookings(status string, page, pageSize int) (*BookingsResponse, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}

	resp, err := c.doRequest("GET", pagedPath("/api/admin/bookings", page, pageSize, query), nil)
	if err != nil {
		return nil, err
	}

	var result BookingsResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetBookingStatus moves a booking to a new status
func (c *Client) SetBookingStatus(id, status string) error {
	resp, err := c.doRequest("PUT", fmt.Sprintf("/api/admin/bookings/%s/status", id), map[string]string{"status": status})
	if err != nil {
		return err
	}
	return c.handleResponse(resp, nil)
}

// User error triage API

// UserErrorsResponse paginated user error list
type UserErrorsResponse struct {
	Data     []models.UserError `json:"data"`
	Page     int                `json:"page"`
	PageSize int                `json:"page_size"`
	Total    int64              `json:"total"`
}

// ListUserErrors fetches paginated user errors, optionally filtered by status
func (c *Client) ListUserErrors(status string, page, pageSize int) (*UserErrorsResponse, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}

	resp, err := c.doRequest("GET", pagedPath("/api/admin/user-errors", page, pageSize, query), nil)
	if err != nil {
		return nil, err
	}

	var result UserErrorsResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// ReviewUserError marks a user error valid or needs_review
func (c *Client) ReviewUserError(id uint, status, notes string) (*models.UserError, error) {
	resp, err := c.doRequest("PUT", fmt.Sprintf("/api/admin/user-errors/%d/review", id), map[string]string{
		"status": status,
		"notes":  notes,
	})
	if err != nil {
		return nil, err
	}

	var ue models.UserError
	if err := c.handleResponse(resp, &ue); err != nil {
		return nil, err
	}
	return &ue, nil
}

// DeleteUserError removes one user error
func (c *Client) DeleteUserError(id uint) error {
	resp, err := c.doRequest("DELETE", fmt.Sprintf("/api/admin/user-errors/%d", id), nil)
	if err != nil {
		return err
	}
	return c.handleResponse(resp, nil)
}

// System error log API

// ErrorLogsResponse paginated error log list
type ErrorLogsResponse struct {
	Data     []models.ErrorLog `json:"data"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
	Total    int64             `json:"total"`
}

// ListErrorLogs fetches paginated technical error logs
func (c *Client) ListErrorLogs(page, pageSize int) (*ErrorLogsResponse, error) {
	resp, err := c.doRequest("GET", pagedPath("/api/admin/error-logs", page, pageSize, nil), nil)
	if err != nil {
		return nil, err
	}

	var result ErrorLogsResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// DeleteErrorLog removes one error log
func (c *Client) DeleteErrorLog(id uint) error {
	resp, err := c.doRequest("DELETE", fmt.Sprintf("/api/admin/error-logs/%d", id), nil)
	if err != nil {
		return err
	}
	return c.handleResponse(resp, nil)
}

// ClearErrorLogs deletes all error logs
func (c *Client) ClearErrorLogs() (int64, error) {
	resp, err := c.doRequest("DELETE", "/api/admin/error-logs", nil)
	if err != nil {
		return 0, err
	}

	var result struct {
		Deleted int64 `json:"deleted"`
	}
	if err := c.handleResponse(resp, &result); err != nil {
		return 0, err
	}
	return result.Deleted, nil
}

// ExportErrorLogs downloads the current error log page as json or csv
func (c *Client) ExportErrorLogs(format string, page, pageSize int) ([]byte, error) {
	query := url.Values{}
	query.Set("format", format)

	resp, err := c.doRequest("GET", pagedPath("/api/admin/error-logs/export", page, pageSize, query), nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}

	return io.ReadAll(resp.Body)
}

// Email log API

// EmailLogsResponse paginated email log list
type EmailLogsResponse struct {
	Data     []models.EmailLogRead `json:"data"`
	Page     int                   `json:"page"`
	PageSize int                   `json:"page_size"`
	Total    int64                 `json:"total"`
}

// ListEmailLogs fetches paginated email logs, optionally filtered by status
func (c *Client) ListEmailLogs(status string, page, pageSize int) (*EmailLogsResponse, error) {
	query := url.Values{}
	if status != "" {
		query.Set("status", status)
	}

	resp, err := c.doRequest("GET", pagedPath("/api/admin/email-logs", page, pageSize, query), nil)
	if err != nil {
		return nil, err
	}

	var result EmailLogsResponse
	if err := c.handleResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// EmailStats fetches delivery statistics over a rolling window
func (c *Client) EmailStats(days int) (*models.EmailStats, error) {
	path := "/api/admin/email-logs/stats"
	if days > 0 {
		path = fmt.Sprintf("%s?days=%d", path, days)
	}

	resp, err := c.doRequest("GET", path, nil)
	if err != nil {
		return nil, err
	}

	var stats models.EmailStats
	if err := c.handleResponse(resp, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// RetryEmail re-sends a failed email
func (c *Client) RetryEmail(id uint) error {
	resp, err := c.doRequest("POST", fmt.Sprintf("/api/admin/email-logs/%d/retry", id), nil)
	if err != nil {
		return err
	}
	return c.handleResponse(resp, nil)
}

// System API

// GetMetrics fetches the metrics snapshot
func (c *Client) GetMetrics() (map[string]interface{}, error) {
	resp, err := c.doRequest("GET", "/api/admin/metrics", nil)
	if err != nil {
		return nil, err
	}

	var metrics map[string]interface{}
	if err := c.handleResponse(resp, &metrics); err != nil {
		return nil, err
	}
	return metrics, nil
}

// GenerateShutdownCode asks the server for a shutdown confirmation code
func (c *Client) GenerateShutdownCode() (string, error) {
	resp, err := c.doRequest("POST", "/api/admin/shutdown/generate-code", nil)
	if err != nil {
		return "", err
	}

	var result struct {
		Code string `json:"code"`
	}
	if err := c.handleResponse(resp, &result); err != nil {
		return "", err
	}
	return result.Code, nil
}

// VerifyShutdown confirms the code and triggers server shutdown
func (c *Client) VerifyShutdown(code string) error {
	resp, err := c.doRequest("POST", "/api/admin/shutdown/verify", map[string]string{"code": code})
	if err != nil {
		return err
	}
	return c.handleResponse(resp, nil)
}
