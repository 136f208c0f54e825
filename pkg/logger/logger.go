// Package logger provides the structured logging contract used across the
// service and a leveled JSON implementation for production use.
package logger

import "strings"

// Fields carries structured context for a single log entry.
type Fields map[string]interface{}

// Logger is the minimal structured logging interface components depend on.
type Logger interface {
	Debug(msg string, fields Fields)
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	Error(msg string, fields Fields)
	// With returns a logger that attaches the given fields to every entry.
	With(fields Fields) Logger
}

// Level is the logging level.
type Level int

const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// ParseLevel maps a level name to a Level. Unknown names default to info.
func ParseLevel(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return DebugLevel
	case "WARN", "WARNING":
		return WarnLevel
	case "ERROR":
		return ErrorLevel
	default:
		return InfoLevel
	}
}

func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "DEBUG"
	case WarnLevel:
		return "WARN"
	case ErrorLevel:
		return "ERROR"
	default:
		return "INFO"
	}
}

// NoOp discards all log entries. Useful as a default before configuration
// and in tests that do not assert on logging.
type NoOp struct{}

func (NoOp) Debug(string, Fields) {}
func (NoOp) Info(string, Fields)  {}
func (NoOp) Warn(string, Fields)  {}
func (NoOp) Error(string, Fields) {}
func (n NoOp) With(Fields) Logger { return n }
