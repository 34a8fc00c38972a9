package core

import (
	"encoding/json"
	"fmt"
	"log"
	"runtime"

	"gorm.io/gorm"

	"pawphysio/models"
)

// SystemLogger persists technical error records to the error_logs table.
type SystemLogger struct {
	db *gorm.DB
}

// SystemLoggerInstance is the global system logger, set up in main.
var SystemLoggerInstance *SystemLogger

// InitSystemLogger creates the global system logger bound to the database.
func InitSystemLogger(db *gorm.DB) {
	SystemLoggerInstance = &SystemLogger{db: db}
}

// Log records a technical error. Persistence failures are logged to the
// process log and otherwise ignored; the logger must never fail its caller.
func (s *SystemLogger) Log(errorType, component, code, message string, extra map[string]interface{}) {
	s.LogForUser(errorType, component, code, message, 0, "", "", extra)
}

// LogForUser records a technical error attributed to a user/request.
func (s *SystemLogger) LogForUser(errorType, component, code, message string, userID uint, userEmail, userAgent string, extra map[string]interface{}) {
	if s == nil || s.db == nil {
		return
	}

	extraJSON := ""
	if extra != nil {
		if data, err := json.Marshal(extra); err == nil {
			extraJSON = string(data)
		}
	}

	entry := &models.ErrorLog{
		UserID:         userID,
		UserEmail:      userEmail,
		ErrorType:      errorType,
		ErrorCode:      code,
		ErrorMessage:   message,
		Component:      component,
		StackTrace:     stackTrace(3),
		AdditionalData: extraJSON,
		UserAgent:      userAgent,
	}

	if err := s.db.Create(entry).Error; err != nil {
		log.Printf("syslog: failed to persist error log: %v", err)
	}
}

// stackTrace captures up to 10 frames above the logger itself.
func stackTrace(skip int) string {
	const maxDepth = 10
	var stack string

	for i := skip; i < skip+maxDepth; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}

		fn := runtime.FuncForPC(pc)
		funcName := "unknown"
		if fn != nil {
			funcName = fn.Name()
		}

		stack += fmt.Sprintf("%s:%d %s\n", file, line, funcName)
	}

	return stack
}

// Helper functions for different log levels

// LogErrorSimple records a plain error.
func LogErrorSimple(component, message string) {
	if SystemLoggerInstance != nil {
		SystemLoggerInstance.Log("ERROR", component, "", message, nil)
	}
}

// LogErrorWithCode records an error with a machine-readable code.
func LogErrorWithCode(component, code, message string) {
	if SystemLoggerInstance != nil {
		SystemLoggerInstance.Log("ERROR", component, code, message, nil)
	}
}

// LogWarn records a warning.
func LogWarn(component, message string) {
	if SystemLoggerInstance != nil {
		SystemLoggerInstance.Log("WARN", component, "", message, nil)
	}
}

// LogFatal records a fatal error with context.
func LogFatal(component, message string, extra map[string]interface{}) {
	if SystemLoggerInstance != nil {
		SystemLoggerInstance.Log("FATAL", component, "", message, extra)
	}
}
