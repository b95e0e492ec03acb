// Package logging provides config-driven categorized file-based logging.
// Logs are written to <workspace>/.larch/logs/ with one file per
// category. Logging is a silent no-op unless debug mode is enabled.
package logging

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Category represents a log category/system.
type Category string

const (
	CategoryBoot    Category = "boot"    // Startup and initialization
	CategoryGateway Category = "gateway" // Remote model calls
	CategoryStudio  Category = "studio"  // Tracker, orchestrator, edit sessions
	CategoryStore   Category = "store"   // Persistence adapter operations
	CategoryServer  Category = "server"  // HTTP proxy endpoints
)

// Log levels.
const (
	LevelDebug = 0
	LevelInfo  = 1
	LevelWarn  = 2
	LevelError = 3
)

// Logger wraps a standard logger with category and file output.
type Logger struct {
	category Category
	logger   *log.Logger
	file     *os.File
}

var (
	loggers   = make(map[Category]*Logger)
	loggersMu sync.RWMutex
	logsDir   string
	debugMode bool
	logLevel  = LevelInfo
)

// Initialize sets up the logging directory. Should be called once at
// startup with the workspace path. With debug disabled, every logging
// call is a no-op.
func Initialize(workspace string, debug bool, level string) error {
	if workspace == "" {
		return fmt.Errorf("workspace path required")
	}

	debugMode = debug
	switch level {
	case "debug":
		logLevel = LevelDebug
	case "warn", "warning":
		logLevel = LevelWarn
	case "error":
		logLevel = LevelError
	default:
		logLevel = LevelInfo
	}

	if !debugMode {
		return nil
	}

	logsDir = filepath.Join(workspace, ".larch", "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}

	Boot("=== larchstudio logging initialized ===")
	Boot("Logs directory: %s", logsDir)
	return nil
}

// Get returns (or creates) a logger for the given category.
// Returns a no-op logger if debug mode is disabled.
func Get(category Category) *Logger {
	if !debugMode || logsDir == "" {
		return &Logger{category: category}
	}

	loggersMu.RLock()
	if l, ok := loggers[category]; ok {
		loggersMu.RUnlock()
		return l
	}
	loggersMu.RUnlock()

	loggersMu.Lock()
	defer loggersMu.Unlock()
	if l, ok := loggers[category]; ok {
		return l
	}

	// Date prefix keeps rotation trivial.
	date := time.Now().Format("2006-01-02")
	logPath := filepath.Join(logsDir, fmt.Sprintf("%s_%s.log", date, category))
	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[logging] Warning: could not open log file %s: %v\n", logPath, err)
		return &Logger{category: category}
	}

	l := &Logger{
		category: category,
		file:     file,
		logger:   log.New(file, "", log.Ldate|log.Ltime|log.Lmicroseconds),
	}
	loggers[category] = l
	return l
}

// Debug logs a debug message (only if level <= debug).
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelDebug {
		return
	}
	l.logger.Printf("[DEBUG] %s", fmt.Sprintf(format, args...))
}

// Info logs an informational message (only if level <= info).
func (l *Logger) Info(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelInfo {
		return
	}
	l.logger.Printf("[INFO] %s", fmt.Sprintf(format, args...))
}

// Warn logs a warning message (only if level <= warn).
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.logger == nil || logLevel > LevelWarn {
		return
	}
	l.logger.Printf("[WARN] %s", fmt.Sprintf(format, args...))
}

// Error logs an error message (always logged if logger exists).
func (l *Logger) Error(format string, args ...interface{}) {
	if l.logger == nil {
		return
	}
	l.logger.Printf("[ERROR] %s", fmt.Sprintf(format, args...))
}

// CloseAll closes all open log files (call at shutdown).
func CloseAll() {
	loggersMu.Lock()
	defer loggersMu.Unlock()
	for _, l := range loggers {
		if l.file != nil {
			l.file.Close()
		}
	}
	loggers = make(map[Category]*Logger)
}

// Convenience functions. No-ops if debug mode is disabled.

// Boot logs to the boot category.
func Boot(format string, args ...interface{}) { Get(CategoryBoot).Info(format, args...) }

// BootError logs an error to the boot category.
func BootError(format string, args ...interface{}) { Get(CategoryBoot).Error(format, args...) }

// Gateway logs to the gateway category.
func Gateway(format string, args ...interface{}) { Get(CategoryGateway).Info(format, args...) }

// GatewayDebug logs debug to the gateway category.
func GatewayDebug(format string, args ...interface{}) { Get(CategoryGateway).Debug(format, args...) }

// GatewayError logs an error to the gateway category.
func GatewayError(format string, args ...interface{}) { Get(CategoryGateway).Error(format, args...) }

// Studio logs to the studio category.
func Studio(format string, args ...interface{}) { Get(CategoryStudio).Info(format, args...) }

// StudioDebug logs debug to the studio category.
func StudioDebug(format string, args ...interface{}) { Get(CategoryStudio).Debug(format, args...) }

// StudioWarn logs a warning to the studio category.
func StudioWarn(format string, args ...interface{}) { Get(CategoryStudio).Warn(format, args...) }

// Store logs to the store category.
func Store(format string, args ...interface{}) { Get(CategoryStore).Info(format, args...) }

// StoreError logs an error to the store category.
func StoreError(format string, args ...interface{}) { Get(CategoryStore).Error(format, args...) }

// Server logs to the server category.
func Server(format string, args ...interface{}) { Get(CategoryServer).Info(format, args...) }

// ServerError logs an error to the server category.
func ServerError(format string, args ...interface{}) { Get(CategoryServer).Error(format, args...) }
