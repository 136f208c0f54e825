package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// JSONLogger writes one JSON object per entry with timestamp, level, message,
// and merged fields. Safe for concurrent use.
type JSONLogger struct {
	mu    *sync.Mutex
	out   io.Writer
	level Level
	base  Fields
	now   func() time.Time
}

// NewJSONLogger creates a JSON logger writing to stdout at the given level.
func NewJSONLogger(level Level) *JSONLogger {
	return NewJSONLoggerTo(os.Stdout, level)
}

// NewJSONLoggerTo creates a JSON logger writing to w at the given level.
func NewJSONLoggerTo(w io.Writer, level Level) *JSONLogger {
	return &JSONLogger{
		mu:    &sync.Mutex{},
		out:   w,
		level: level,
		base:  Fields{},
		now:   time.Now,
	}
}

func (l *JSONLogger) Debug(msg string, fields Fields) { l.log(DebugLevel, msg, fields) }
func (l *JSONLogger) Info(msg string, fields Fields)  { l.log(InfoLevel, msg, fields) }
func (l *JSONLogger) Warn(msg string, fields Fields)  { l.log(WarnLevel, msg, fields) }
func (l *JSONLogger) Error(msg string, fields Fields) { l.log(ErrorLevel, msg, fields) }

// With returns a child logger carrying the merged base fields. The child
// shares the parent's writer and mutex.
func (l *JSONLogger) With(fields Fields) Logger {
	base := make(Fields, len(l.base)+len(fields))
	for k, v := range l.base {
		base[k] = v
	}
	for k, v := range fields {
		base[k] = v
	}
	return &JSONLogger{mu: l.mu, out: l.out, level: l.level, base: base, now: l.now}
}

func (l *JSONLogger) log(level Level, msg string, fields Fields) {
	if level < l.level {
		return
	}

	entry := make(map[string]interface{}, len(l.base)+len(fields)+3)
	for k, v := range l.base {
		entry[k] = normalize(v)
	}
	for k, v := range fields {
		entry[k] = normalize(v)
	}
	entry["time"] = l.now().UTC().Format(time.RFC3339Nano)
	entry["level"] = level.String()
	entry["msg"] = msg

	line, err := json.Marshal(entry)
	if err != nil {
		// Marshal can only fail on exotic field values; degrade rather
		// than drop the entry.
		line = []byte(fmt.Sprintf(`{"level":%q,"msg":%q}`, level.String(), msg))
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.out.Write(append(line, '\n'))
}

// normalize makes common non-JSON-friendly values loggable.
func normalize(v interface{}) interface{} {
	switch t := v.(type) {
	case error:
		return t.Error()
	case time.Duration:
		return t.String()
	case fmt.Stringer:
		return t.String()
	default:
		return v
	}
}
