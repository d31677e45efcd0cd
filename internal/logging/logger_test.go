package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestConsoleHandlerPromotesComponent(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	NewComponentLogger(logger, "engine").Info("model loaded", String(FieldModel, "base"))

	line := buf.String()
	if !strings.Contains(line, "INFO engine: model loaded") {
		t.Fatalf("unexpected line %q", line)
	}
	if !strings.Contains(line, "model=base") {
		t.Fatalf("expected model attr in %q", line)
	}
	if strings.Contains(line, "component=") {
		t.Fatalf("component should be promoted, got %q", line)
	}
}

func TestConsoleHandlerQuotesValues(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(newConsoleHandler(&buf, lvl, false))

	logger.Info("done", String("source", "my file.mp3"))
	if !strings.Contains(buf.String(), `source="my file.mp3"`) {
		t.Fatalf("expected quoted value, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"":        slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		" DEBUG ": slog.LevelDebug,
	}
	for in, want := range cases {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNoopHandler(t *testing.T) {
	logger := NewNop()
	if logger.Enabled(context.Background(), slog.LevelError) {
		t.Fatal("noop logger should be disabled at all levels")
	}
	logger.Error("ignored", Error(nil))
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := New(Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
