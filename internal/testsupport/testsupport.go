// Package testsupport holds helpers shared by package tests.
package testsupport

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"audioink/internal/config"
	"audioink/internal/history"
)

// NewConfig returns a validated config rooted in a fresh temp directory.
func NewConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Paths.ModelsDir = filepath.Join(dir, "models")
	cfg.Paths.DataDir = filepath.Join(dir, "data")
	cfg.Paths.WorkDir = filepath.Join(dir, "work")
	cfg.Paths.LogDir = filepath.Join(dir, "logs")
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}

// MustOpenStore opens the history store for cfg and closes it on cleanup.
func MustOpenStore(t *testing.T, cfg *config.Config) *history.Store {
	t.Helper()
	store, err := history.Open(cfg)
	if err != nil {
		t.Fatalf("open history store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// StubBinary places an executable shell script named name on PATH and
// returns its path. Only meaningful on unix-like systems.
func StubBinary(t *testing.T, name, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub binaries require a unix shell")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatalf("write stub binary: %v", err)
	}
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
	return path
}
