// Package logger provides structured logging for the volksfeste tools.
//
// The logger supports multiple log levels (DEBUG, INFO, WARN, ERROR) and renders
// entries through charmbracelet/log, either as coloured text for a terminal or as
// one JSON object per line. All entries carry a timestamp and can include
// arbitrary structured fields.
//
// Example usage:
//
//	logger.Info("Detail page parsed", logger.Fields{
//	    "url":    link,
//	    "fields": len(details),
//	})
//
//	logger.Error("Geocoding failed", logger.Fields{
//	    "address": address,
//	}, err)
package logger

import (
	"io"
	"os"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Format selects how entries are rendered
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Logger provides structured logging
type Logger struct {
	minLevel Level
	out      *log.Logger
}

// Fields represents structured log fields
type Fields map[string]interface{}

var defaultLogger *Logger

func init() {
	defaultLogger = New(LevelInfo, os.Stderr, FormatText)
}

// New creates a new logger with the specified minimum log level, output destination
// and format. Messages below the minimum level are discarded.
func New(level Level, output io.Writer, format Format) *Logger {
	formatter := log.TextFormatter
	if format == FormatJSON {
		formatter = log.JSONFormatter
	}

	return &Logger{
		minLevel: level,
		out: log.NewWithOptions(output, log.Options{
			ReportTimestamp: true,
			Level:           log.DebugLevel,
			Formatter:       formatter,
		}),
	}
}

// ParseLevel maps a user supplied level name to a Level. Unknown names map to INFO.
func ParseLevel(name string) Level {
	switch Level(strings.ToUpper(strings.TrimSpace(name))) {
	case LevelDebug:
		return LevelDebug
	case LevelWarn, "WARNING":
		return LevelWarn
	case LevelError:
		return LevelError
	default:
		return LevelInfo
	}
}

// SetDefault sets the default package-level logger used by the convenience functions
// (Debug, Info, Warn, Error).
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// log writes a structured log entry
func (l *Logger) log(level Level, message string, fields Fields, err error) {
	if !l.shouldLog(level) {
		return
	}

	keyvals := fields.keyvals()
	if err != nil {
		keyvals = append(keyvals, "err", err.Error())
	}

	switch level {
	case LevelDebug:
		l.out.Debug(message, keyvals...)
	case LevelWarn:
		l.out.Warn(message, keyvals...)
	case LevelError:
		l.out.Error(message, keyvals...)
	default:
		l.out.Info(message, keyvals...)
	}
}

// shouldLog determines if a message should be logged based on level
func (l *Logger) shouldLog(level Level) bool {
	levels := map[Level]int{
		LevelDebug: 0,
		LevelInfo:  1,
		LevelWarn:  2,
		LevelError: 3,
	}
	return levels[level] >= levels[l.minLevel]
}

// keyvals flattens fields into sorted key/value pairs so output is stable
func (f Fields) keyvals() []interface{} {
	if len(f) == 0 {
		return nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]interface{}, 0, len(keys)*2)
	for _, k := range keys {
		kv = append(kv, k, f[k])
	}
	return kv
}

// Debug logs a debug message with optional structured fields.
func (l *Logger) Debug(message string, fields Fields) {
	l.log(LevelDebug, message, fields, nil)
}

// Info logs an informational message with optional structured fields.
func (l *Logger) Info(message string, fields Fields) {
	l.log(LevelInfo, message, fields, nil)
}

// Warn logs a warning message with optional structured fields.
// Warnings mark rows that were skipped or left blank.
func (l *Logger) Warn(message string, fields Fields) {
	l.log(LevelWarn, message, fields, nil)
}

// Error logs an error message with optional structured fields and an error object.
func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

// Package-level convenience functions using default logger

// Debug logs a debug message with the default logger
func Debug(message string, fields Fields) {
	defaultLogger.Debug(message, fields)
}

// Info logs an info message with the default logger
func Info(message string, fields Fields) {
	defaultLogger.Info(message, fields)
}

// Warn logs a warning message with the default logger
func Warn(message string, fields Fields) {
	defaultLogger.Warn(message, fields)
}

// Error logs an error message with the default logger
func Error(message string, fields Fields, err error) {
	defaultLogger.Error(message, fields, err)
}
