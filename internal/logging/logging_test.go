package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/abhisek/pathwise/internal/config"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{" WARN ", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.in); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHandlerFormat(t *testing.T) {
	var buf bytes.Buffer
	slog.New(handler(&buf, config.LogConfig{Format: "json"})).Info("hello", "user", "u1")

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("json handler wrote %q: %v", buf.String(), err)
	}
	if line["user"] != "u1" {
		t.Errorf("line = %v", line)
	}

	buf.Reset()
	slog.New(handler(&buf, config.LogConfig{Format: "text", Level: "warn"})).Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("info logged at warn level: %q", buf.String())
	}
}

func TestNew_File(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	path := filepath.Join(t.TempDir(), "logs", "pathwise.log")
	logger, closeFn, err := New(config.LogConfig{Level: "debug", File: path})
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("to the file")
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), "to the file") {
		t.Errorf("log file = %q", b)
	}
	if slog.Default() != logger {
		t.Error("New did not install the default logger")
	}
}
