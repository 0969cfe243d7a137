package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	line := strings.TrimSpace(buf.String())
	var entry map[string]any
	if err := json.Unmarshal([]byte(line), &entry); err != nil {
		t.Fatalf("Failed to decode log line %q: %v", line, err)
	}
	return entry
}

func TestJSONLogger_Levels(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, WarnLevel)

	logger.Debug("debug message")
	logger.Info("info message")
	if buf.Len() != 0 {
		t.Errorf("Expected debug/info to be suppressed at WARN level, got %q", buf.String())
	}

	logger.Warn("warn message")
	entry := decodeLine(t, &buf)
	if entry["level"] != "WARN" {
		t.Errorf("level = %v, want WARN", entry["level"])
	}
	if entry["message"] != "warn message" {
		t.Errorf("message = %v, want 'warn message'", entry["message"])
	}
}

func TestJSONLogger_Fields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	logger.Info("block written", BlockID(42), Path("/tmp/capped.db"))

	entry := decodeLine(t, &buf)
	fields, ok := entry["fields"].(map[string]any)
	if !ok {
		t.Fatalf("Expected fields object, got %v", entry["fields"])
	}
	if fields["block_id"] != float64(42) {
		t.Errorf("block_id = %v, want 42", fields["block_id"])
	}
	if fields["path"] != "/tmp/capped.db" {
		t.Errorf("path = %v, want /tmp/capped.db", fields["path"])
	}
}

func TestJSONLogger_With(t *testing.T) {
	var buf bytes.Buffer
	logger := NewJSONLogger(&buf, InfoLevel)

	child := logger.With(Component("capped"))
	child.Info("resized", SizeKb(16))

	entry := decodeLine(t, &buf)
	fields := entry["fields"].(map[string]any)
	if fields["component"] != "capped" {
		t.Errorf("component = %v, want capped", fields["component"])
	}
	if fields["size_kb"] != float64(16) {
		t.Errorf("size_kb = %v, want 16", fields["size_kb"])
	}
}

func TestErrorField(t *testing.T) {
	f := Error(errors.New("boom"))
	if f.Key != "error" || f.Value != "boom" {
		t.Errorf("Error field = %+v", f)
	}

	f = Error(nil)
	if f.Key != "error" || f.Value != nil {
		t.Errorf("Error(nil) field = %+v", f)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want Level
	}{
		{"DEBUG", DebugLevel},
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"warn", WarnLevel},
		{"WARNING", WarnLevel},
		{"error", ErrorLevel},
		{"bogus", InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
