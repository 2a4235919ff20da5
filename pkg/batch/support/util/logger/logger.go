// Package logger provides the leveled logger used across the workflow core.
// It writes through the standard `log` package and drops messages below the configured level.
package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync/atomic"
)

// LogLevel is a type representing the logging level. Smaller numbers are more verbose.
type LogLevel int32

const (
	// LevelDebug is used for detailed debugging information such as SQL traces and poll results.
	LevelDebug LogLevel = iota
	// LevelInfo is used for state transitions of cycles, batches and jobs.
	LevelInfo
	// LevelWarn is used for recoverable problems such as a failed submission that will be retried.
	LevelWarn
	// LevelError is used for failures surfaced to the caller.
	LevelError
	// LevelFatal is used right before the process exits.
	LevelFatal
	// LevelSilent suppresses everything except Fatalf.
	LevelSilent
)

var (
	logLevel atomic.Int32
	std      = log.New(os.Stderr, "", log.LstdFlags)
)

func init() {
	logLevel.Store(int32(LevelInfo))
}

// ParseLevel converts "DEBUG", "INFO", "WARN", "ERROR", "FATAL" or "SILENT" (case-insensitive) to a LogLevel.
func ParseLevel(level string) (LogLevel, bool) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return LevelDebug, true
	case "INFO":
		return LevelInfo, true
	case "WARN", "WARNING":
		return LevelWarn, true
	case "ERROR":
		return LevelError, true
	case "FATAL":
		return LevelFatal, true
	case "SILENT":
		return LevelSilent, true
	}
	return LevelInfo, false
}

// SetLogLevel sets the global log level.
// An unknown value falls back to INFO and says so on stderr.
func SetLogLevel(level string) {
	parsed, ok := ParseLevel(level)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown log level '%s' specified. Defaulting to INFO level.\n", level)
	}
	logLevel.Store(int32(parsed))
}

// Level returns the current global log level.
func Level() LogLevel {
	return LogLevel(logLevel.Load())
}

// SetOutput redirects log output, e.g. to a buffer in tests.
func SetOutput(w io.Writer) {
	std.SetOutput(w)
}

func enabled(l LogLevel) bool {
	return LogLevel(logLevel.Load()) <= l
}

// Debugf formats and outputs a DEBUG level log message.
func Debugf(format string, v ...interface{}) {
	if enabled(LevelDebug) {
		std.Printf("[DEBUG] "+format, v...)
	}
}

// Infof formats and outputs an INFO level log message.
func Infof(format string, v ...interface{}) {
	if enabled(LevelInfo) {
		std.Printf("[INFO] "+format, v...)
	}
}

// Warnf formats and outputs a WARN level log message.
func Warnf(format string, v ...interface{}) {
	if enabled(LevelWarn) {
		std.Printf("[WARN] "+format, v...)
	}
}

// Errorf formats and outputs an ERROR level log message.
func Errorf(format string, v ...interface{}) {
	if enabled(LevelError) {
		std.Printf("[ERROR] "+format, v...)
	}
}

// Fatalf outputs a FATAL level log message and terminates the program with os.Exit(1).
func Fatalf(format string, v ...interface{}) {
	std.Fatalf("[FATAL] "+format, v...)
}
