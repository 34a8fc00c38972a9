package handlers

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"pawphysio/config"
	"pawphysio/core"
	"pawphysio/database"
	"pawphysio/service"
	"pawphysio/version"
)

// ShutdownManager manages shutdown confirmation codes
type ShutdownManager struct {
	mu        sync.RWMutex
	code      string
	expiresAt time.Time
}

var shutdownMgr = &ShutdownManager{}

// HealthCheck health endpoint
func HealthCheck(c *gin.Context) {
	// Check database connectivity
	sqlDB, err := database.DB.DB()
	dbHealthy := true
	if err != nil {
		dbHealthy = false
	} else {
		if err := sqlDB.Ping(); err != nil {
			dbHealthy = false
		}
	}

	health := gin.H{
		"status":          "healthy",
		"timestamp":       time.Now().Unix(),
		"db_healthy":      dbHealthy,
		"capture_enabled": config.Settings.CaptureEnabled,
	}

	if !dbHealthy {
		health["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, health)
		return
	}

	c.JSON(http.StatusOK, health)
}

type metricsSnapshot struct {
	timestamp      int64
	userErrorCount int64
	errorLogCount  int64
	mem            runtime.MemStats
}

func collectMetricsSnapshot() metricsSnapshot {
	var userErrorCount int64
	if _, total, err := service.GlobalServices.UserError.ListPage(service.UserErrorFilter{}, 1, 1); err == nil {
		userErrorCount = total
	}

	errorLogCount, _ := service.GlobalServices.SystemLog.Count()

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return metricsSnapshot{
		timestamp:      time.Now().Unix(),
		userErrorCount: userErrorCount,
		errorLogCount:  errorLogCount,
		mem:            mem,
	}
}

// GetMetrics gathers system metrics
func GetMetrics(c *gin.Context) {
	s := collectMetricsSnapshot()

	metrics := gin.H{
		"timestamp": s.timestamp,
		"capture": gin.H{
			"queue_len":      core.CaptureInstance.QueueLen(),
			"queue_capacity": core.CaptureInstance.QueueCap(),
			"dropped_total":  core.CaptureInstance.DroppedTotal(),
		},
		"user_errors": gin.H{
			"total": s.userErrorCount,
		},
		"error_logs": gin.H{
			"total": s.errorLogCount,
		},
		"system": gin.H{
			"goroutines":   runtime.NumGoroutine(),
			"memory_alloc": s.mem.Alloc,
			"memory_total": s.mem.TotalAlloc,
			"memory_sys":   s.mem.Sys,
			"gc_runs":      s.mem.NumGC,
		},
	}

	c.JSON(http.StatusOK, metrics)
}

func promLabelEscape(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "\n", "\\n")
	return s
}

// GetPrometheusMetrics writes Prometheus-formatted metrics to the HTTP response
// for scraping, using the Prometheus exposition content type.
func GetPrometheusMetrics(c *gin.Context) {
	s := collectMetricsSnapshot()

	var buf bytes.Buffer

	buf.WriteString("# HELP pawphysio_build_info Build information.\n")
	buf.WriteString("# TYPE pawphysio_build_info gauge\n")
	fmt.Fprintf(
		&buf,
		"pawphysio_build_info{version=\"%s\",commit=\"%s\",build_time=\"%s\"} 1\n",
		promLabelEscape(version.Version),
		promLabelEscape(version.CommitHash),
		promLabelEscape(version.BuildTime),
	)

	buf.WriteString("# HELP pawphysio_sqlite_up SQLite connectivity (1=up, 0=down).\n")
	buf.WriteString("# TYPE pawphysio_sqlite_up gauge\n")
	if database.SQLiteUp(c.Request.Context()) {
		buf.WriteString("pawphysio_sqlite_up 1\n")
	} else {
		buf.WriteString("pawphysio_sqlite_up 0\n")
	}

	buf.WriteString("# HELP pawphysio_sqlite_busy_errors_total Total SQLite busy errors observed.\n")
	buf.WriteString("# TYPE pawphysio_sqlite_busy_errors_total counter\n")
	fmt.Fprintf(&buf, "pawphysio_sqlite_busy_errors_total %d\n", database.SQLiteBusyErrorsTotal())

	buf.WriteString("# HELP pawphysio_sqlite_locked_errors_total Total SQLite locked errors observed.\n")
	buf.WriteString("# TYPE pawphysio_sqlite_locked_errors_total counter\n")
	fmt.Fprintf(&buf, "pawphysio_sqlite_locked_errors_total %d\n", database.SQLiteLockedErrorsTotal())

	buf.WriteString("# HELP pawphysio_capture_queue_capacity User error capture queue capacity.\n")
	buf.WriteString("# TYPE pawphysio_capture_queue_capacity gauge\n")
	fmt.Fprintf(&buf, "pawphysio_capture_queue_capacity %d\n", core.CaptureInstance.QueueCap())

	buf.WriteString("# HELP pawphysio_capture_queue_len Current number of buffered capture events.\n")
	buf.WriteString("# TYPE pawphysio_capture_queue_len gauge\n")
	fmt.Fprintf(&buf, "pawphysio_capture_queue_len %d\n", core.CaptureInstance.QueueLen())

	buf.WriteString("# HELP pawphysio_capture_dropped_total Total capture events dropped due to backpressure.\n")
	buf.WriteString("# TYPE pawphysio_capture_dropped_total counter\n")
	fmt.Fprintf(&buf, "pawphysio_capture_dropped_total %d\n", core.CaptureInstance.DroppedTotal())

	buf.WriteString("# HELP pawphysio_user_errors_total User-reported errors stored.\n")
	buf.WriteString("# TYPE pawphysio_user_errors_total gauge\n")
	fmt.Fprintf(&buf, "pawphysio_user_errors_total %d\n", s.userErrorCount)

	buf.WriteString("# HELP pawphysio_error_logs_total Technical error logs stored.\n")
	buf.WriteString("# TYPE pawphysio_error_logs_total gauge\n")
	fmt.Fprintf(&buf, "pawphysio_error_logs_total %d\n", s.errorLogCount)

	buf.WriteString("# HELP pawphysio_go_goroutines Number of goroutines.\n")
	buf.WriteString("# TYPE pawphysio_go_goroutines gauge\n")
	fmt.Fprintf(&buf, "pawphysio_go_goroutines %d\n", runtime.NumGoroutine())

	buf.WriteString("# HELP pawphysio_memory_alloc_bytes Bytes of allocated heap objects.\n")
	buf.WriteString("# TYPE pawphysio_memory_alloc_bytes gauge\n")
	fmt.Fprintf(&buf, "pawphysio_memory_alloc_bytes %d\n", s.mem.Alloc)

	buf.WriteString("# HELP pawphysio_memory_sys_bytes Bytes obtained from the OS.\n")
	buf.WriteString("# TYPE pawphysio_memory_sys_bytes gauge\n")
	fmt.Fprintf(&buf, "pawphysio_memory_sys_bytes %d\n", s.mem.Sys)

	buf.WriteString("# HELP pawphysio_gc_runs_total Number of completed GC cycles.\n")
	buf.WriteString("# TYPE pawphysio_gc_runs_total counter\n")
	fmt.Fprintf(&buf, "pawphysio_gc_runs_total %d\n", s.mem.NumGC)

	c.Data(http.StatusOK, "text/plain; version=0.0.4; charset=utf-8", buf.Bytes())
}

// GenerateShutdownCode creates a shutdown confirmation code
func GenerateShutdownCode(c *gin.Context) {
	shutdownMgr.mu.Lock()
	defer shutdownMgr.mu.Unlock()

	// Generate a 6-digit random number
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Failed to generate code"})
		return
	}

	shutdownMgr.code = fmt.Sprintf("%06d", n.Int64())
	shutdownMgr.expiresAt = time.Now().Add(5 * time.Minute) // 5-minute expiration

	c.JSON(http.StatusOK, gin.H{
		"code":       shutdownMgr.code,
		"expires_at": shutdownMgr.expiresAt.Unix(),
	})
}

// VerifyAndShutdown validates the confirmation code and shuts the app down
func VerifyAndShutdown(c *gin.Context) {
	var req struct {
		Code string `json:"code" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid request"})
		return
	}

	shutdownMgr.mu.RLock()
	storedCode := shutdownMgr.code
	expiresAt := shutdownMgr.expiresAt
	shutdownMgr.mu.RUnlock()

	// Ensure a code was issued
	if storedCode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "No shutdown code generated. Please generate one first."})
		return
	}

	// Check expiration
	if time.Now().After(expiresAt) {
		shutdownMgr.mu.Lock()
		shutdownMgr.code = ""
		shutdownMgr.mu.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Shutdown code expired. Please generate a new one."})
		return
	}

	// Validate the code value
	if req.Code != storedCode {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "Invalid shutdown code"})
		return
	}

	// Clear the stored code
	shutdownMgr.mu.Lock()
	shutdownMgr.code = ""
	shutdownMgr.mu.Unlock()

	// Respond success
	c.JSON(http.StatusOK, gin.H{"ok": true, "message": "Shutdown initiated"})

	// Perform graceful shutdown in the background
	go func() {
		time.Sleep(500 * time.Millisecond) // Give clients time to receive the response
		core.LogErrorWithCode("System", "SHUTDOWN_API", "Shutdown requested via API with confirmation code")
		// main.go must initialize the global shutdown channel
		if shutdownChan != nil {
			shutdownChan <- true
		}
	}()
}

// Global shutdown channel (must be initialized in main.go)
var shutdownChan chan bool

// SetShutdownChannel sets the shutdown channel
func SetShutdownChannel(ch chan bool) {
	shutdownChan = ch
}
