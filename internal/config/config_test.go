package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"audioink/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantModels := filepath.Join(tempHome, ".local", "share", "audioink", "models")
	if cfg.Paths.ModelsDir != wantModels {
		t.Fatalf("unexpected models dir: got %q want %q", cfg.Paths.ModelsDir, wantModels)
	}
	if cfg.Transcription.Model != "base" {
		t.Fatalf("unexpected default model: %q", cfg.Transcription.Model)
	}
	if cfg.Transcription.Language != "auto" {
		t.Fatalf("unexpected default language: %q", cfg.Transcription.Language)
	}
	if cfg.Transcription.SpeedFactor != 1.0 {
		t.Fatalf("unexpected default speed factor: %v", cfg.Transcription.SpeedFactor)
	}
	if cfg.FFmpegBinary() != "ffmpeg" || cfg.YtdlpBinary() != "yt-dlp" {
		t.Fatalf("unexpected tool defaults: %q %q", cfg.FFmpegBinary(), cfg.YtdlpBinary())
	}
	if cfg.HistoryPath() != filepath.Join(cfg.Paths.DataDir, "history.db") {
		t.Fatalf("unexpected history path: %q", cfg.HistoryPath())
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.ModelsDir, cfg.Paths.DataDir, cfg.Paths.WorkDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "audioink.toml")

	body := `
[paths]
models_dir = "` + filepath.Join(tempDir, "models") + `"

[transcription]
model = "Small"
language = "EN"
speed_factor = 1.5

[logging]
format = "JSON"
`
	if err := os.WriteFile(configPath, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: %q", resolved)
	}
	if cfg.Paths.ModelsDir != filepath.Join(tempDir, "models") {
		t.Fatalf("unexpected models dir: %q", cfg.Paths.ModelsDir)
	}
	if cfg.Transcription.Model != "small" {
		t.Fatalf("expected normalized model name, got %q", cfg.Transcription.Model)
	}
	if cfg.Transcription.Language != "en" {
		t.Fatalf("expected normalized language, got %q", cfg.Transcription.Language)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json log format, got %q", cfg.Logging.Format)
	}
}

func TestLoadMissingCustomPathUsesDefaults(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "nope.toml")

	cfg, _, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected missing file")
	}
	if cfg.Transcription.Model != "base" {
		t.Fatalf("expected defaults, got model %q", cfg.Transcription.Model)
	}
}

func TestValidateRejectsSpeedFactorOutOfRange(t *testing.T) {
	cfg := config.Default()
	cfg.Transcription.SpeedFactor = 2.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for speed factor above 2.0")
	}
	cfg.Transcription.SpeedFactor = 0.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for speed factor below 1.0")
	}
}

func TestValidateRejectsTimestampsWithSpeedup(t *testing.T) {
	cfg := config.Default()
	cfg.Transcription.Timestamps = true
	cfg.Transcription.SpeedFactor = 1.5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for timestamps with speed-up")
	}
}

func TestCreateSample(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected sample config content")
	}
}
