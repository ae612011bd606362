package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	"github.com/vnykmshr/ratebucket/internal/testutil"
)

func TestNewText(t *testing.T) {
	var buf testutil.SyncBuffer
	logger, err := New(Config{Level: "info", Format: "text", Writer: &buf})
	testutil.AssertNoError(t, err)

	logger.Debug("hidden")
	logger.Info("bucket registered", "name", "api", "max_tokens", 10)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("debug record should be filtered at info level")
	}
	for _, want := range []string{"bucket registered", "name=api", "max_tokens=10"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q should contain %q", out, want)
		}
	}
}

func TestNewJSON(t *testing.T) {
	var buf testutil.SyncBuffer
	logger, err := New(Config{Level: "debug", Format: "JSON", Writer: &buf})
	testutil.AssertNoError(t, err)

	logger.Debug("report", "accepted", 3)

	var record map[string]any
	testutil.AssertNoError(t, json.Unmarshal([]byte(buf.String()), &record))
	testutil.AssertEqual(t, record["msg"], any("report"))
	testutil.AssertEqual(t, record["accepted"], any(3.0))
}

func TestNewErrors(t *testing.T) {
	if _, err := New(Config{Level: "loud"}); err == nil {
		t.Error("expected error for unknown level")
	}
	if _, err := New(Config{Format: "xml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"", slog.LevelInfo},
		{"DEBUG", slog.LevelDebug},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
	}
	for _, tt := range tests {
		got, err := ParseLevel(tt.in)
		testutil.AssertNoError(t, err)
		testutil.AssertEqual(t, got, tt.want)
	}
}

func TestDiscard(t *testing.T) {
	if Discard().Enabled(context.Background(), slog.LevelError) {
		t.Error("Discard should not enable any level")
	}
}
