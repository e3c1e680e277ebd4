package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name  string
		level string
		want  slog.Level
	}{
		{"debug level", "debug", slog.LevelDebug},
		{"warn level", "warn", slog.LevelWarn},
		{"warning alias", "WARNING", slog.LevelWarn},
		{"error level", "error", slog.LevelError},
		{"default info", "", slog.LevelInfo},
		{"unknown falls back", "verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.level); got != tt.want {
				t.Fatalf("ParseLevel(%q) = %s, want %s", tt.level, got, tt.want)
			}
		})
	}
}

func TestDefaultLogger(t *testing.T) {
	logger := Default()

	ctx := context.Background()
	if !logger.Enabled(ctx, slog.LevelInfo) {
		t.Error("Default() should enable info level")
	}
	if logger.Enabled(ctx, slog.LevelDebug) {
		t.Error("Default() should not enable debug level")
	}
	if logger.Logger == nil {
		t.Fatal("Default() returned Logger with nil slog.Logger")
	}
}

func TestNewWithWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "debug", "json")
	logger.Debug("lead saved", "lead_id", "abc")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected json output, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "lead saved" || entry["lead_id"] != "abc" {
		t.Fatalf("unexpected entry: %#v", entry)
	}
}

func TestComponentTagsOutput(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "info", "text").Component("sheetsync")
	logger.Info("mirror skipped")

	out := buf.String()
	if !strings.Contains(out, "component=sheetsync") {
		t.Fatalf("expected component attribute, got %q", out)
	}
}

func TestComponentOnNilLogger(t *testing.T) {
	var logger *Logger
	if child := logger.Component("reports"); child == nil || child.Logger == nil {
		t.Fatal("expected usable logger from nil receiver")
	}
}
