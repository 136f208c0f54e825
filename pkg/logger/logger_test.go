package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"debug", DebugLevel},
		{"DEBUG", DebugLevel},
		{"info", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"", InfoLevel},
		{"bogus", InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestJSONLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLoggerTo(&buf, WarnLevel)

	l.Debug("drop me", nil)
	l.Info("drop me too", nil)
	l.Warn("keep me", nil)
	l.Error("keep me too", nil)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 entries, got %d: %q", len(lines), buf.String())
	}
}

func TestJSONLogger_FieldsAndNormalization(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLoggerTo(&buf, DebugLevel)

	l.Info("adjusted", Fields{
		"product_id": int64(7),
		"error":      errors.New("boom"),
		"took":       150 * time.Millisecond,
	})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["msg"] != "adjusted" {
		t.Errorf("msg = %v, want adjusted", entry["msg"])
	}
	if entry["level"] != "INFO" {
		t.Errorf("level = %v, want INFO", entry["level"])
	}
	if entry["error"] != "boom" {
		t.Errorf("error field = %v, want boom", entry["error"])
	}
	if entry["took"] != "150ms" {
		t.Errorf("took field = %v, want 150ms", entry["took"])
	}
}

func TestJSONLogger_With(t *testing.T) {
	var buf bytes.Buffer
	l := NewJSONLoggerTo(&buf, InfoLevel)

	child := l.With(Fields{"component": "ledger"})
	child.Info("hello", Fields{"k": "v"})

	var entry map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if entry["component"] != "ledger" {
		t.Errorf("component = %v, want ledger", entry["component"])
	}
	if entry["k"] != "v" {
		t.Errorf("k = %v, want v", entry["k"])
	}

	// Parent must not inherit child fields.
	buf.Reset()
	l.Info("again", nil)
	entry = map[string]interface{}{}
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if _, ok := entry["component"]; ok {
		t.Error("parent logger leaked child fields")
	}
}
