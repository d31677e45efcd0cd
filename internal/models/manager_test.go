package models_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"audioink/internal/models"
	"audioink/internal/services"
)

func plentyOfSpace(string) (uint64, error) { return 1 << 40, nil }

func newTestManager(t *testing.T, serverURL string) *models.Manager {
	t.Helper()
	m, err := models.NewManager(t.TempDir(),
		models.WithBaseURL(serverURL),
		models.WithStatfs(plentyOfSpace),
	)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestLookup(t *testing.T) {
	spec, err := models.Lookup(" Base ")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if spec.FileName != "ggml-base.bin" {
		t.Fatalf("unexpected file name %q", spec.FileName)
	}
	if _, err := models.Lookup("giant"); err == nil {
		t.Fatal("expected error for unknown model")
	}
}

func TestDownloadInstallsAtomically(t *testing.T) {
	payload := strings.Repeat("m", 1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/ggml-tiny.bin") {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(payload))
	}))
	defer server.Close()

	m := newTestManager(t, server.URL)

	var lastDownloaded, lastTotal int64
	path, err := m.Download(context.Background(), "tiny", func(downloaded, total int64) {
		lastDownloaded, lastTotal = downloaded, total
	})
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	if filepath.Base(path) != "ggml-tiny.bin" {
		t.Fatalf("unexpected install path %q", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read installed model: %v", err)
	}
	if len(data) != len(payload) {
		t.Fatalf("installed %d bytes, want %d", len(data), len(payload))
	}
	if lastDownloaded != int64(len(payload)) || lastTotal != int64(len(payload)) {
		t.Fatalf("unexpected final progress %d/%d", lastDownloaded, lastTotal)
	}
	if _, err := os.Stat(path + ".partial"); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("partial file must not survive a successful download")
	}

	status, err := m.Status("tiny")
	if err != nil {
		t.Fatal(err)
	}
	if !status.Installed || status.SizeOnDisk != int64(len(payload)) {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestDownloadTruncatedBodyFailsIntegrity(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "4096")
		_, _ = w.Write([]byte("short"))
		if f, ok := w.(http.Flusher); ok {
			f.Flush()
		}
		// Close without sending the rest.
		if hj, ok := w.(http.Hijacker); ok {
			conn, _, _ := hj.Hijack()
			conn.Close()
		}
	}))
	defer server.Close()

	m := newTestManager(t, server.URL)
	_, err := m.Download(context.Background(), "tiny", nil)
	if err == nil {
		t.Fatal("expected error for truncated download")
	}
	if !errors.Is(err, services.ErrIntegrity) && !errors.Is(err, services.ErrDownload) {
		t.Fatalf("expected integrity or download error, got %v", err)
	}
	entries, _ := os.ReadDir(m.Dir())
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".partial") {
			t.Fatalf("partial file %q left behind", entry.Name())
		}
	}
}

func TestDownloadSizeMismatchFailsIntegrity(t *testing.T) {
	// Server lies about the length but delivers a complete body. The byte
	// count check still catches the mismatch.
	listener := httptest.NewUnstartedServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "10")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("12345"))
	}))
	listener.Start()
	defer listener.Close()

	m := newTestManager(t, listener.URL)
	_, err := m.Download(context.Background(), "base", nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrIntegrity) && !errors.Is(err, services.ErrDownload) {
		t.Fatalf("expected integrity or download error, got %v", err)
	}
}

func TestDownloadHTTPErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	m := newTestManager(t, server.URL)
	_, err := m.Download(context.Background(), "tiny", nil)
	if !errors.Is(err, services.ErrDownload) {
		t.Fatalf("expected ErrDownload, got %v", err)
	}
}

func TestDownloadUnknownModel(t *testing.T) {
	m := newTestManager(t, "http://127.0.0.1:0")
	_, err := m.Download(context.Background(), "giant", nil)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDownloadSkipsWhenInstalled(t *testing.T) {
	m := newTestManager(t, "http://127.0.0.1:0")
	path, err := m.Path("tiny")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("existing"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := m.Download(context.Background(), "tiny", nil)
	if err != nil {
		t.Fatalf("Download should short-circuit, got %v", err)
	}
	if got != path {
		t.Fatalf("unexpected path %q", got)
	}
}

func TestDownloadInsufficientSpace(t *testing.T) {
	m, err := models.NewManager(t.TempDir(),
		models.WithBaseURL("http://127.0.0.1:0"),
		models.WithStatfs(func(string) (uint64, error) { return 1024, nil }),
	)
	if err != nil {
		t.Fatal(err)
	}
	_, err = m.Download(context.Background(), "tiny", nil)
	if !errors.Is(err, services.ErrDownload) {
		t.Fatalf("expected ErrDownload for low disk space, got %v", err)
	}
	if !strings.Contains(err.Error(), "disk space") {
		t.Fatalf("expected disk space message, got %v", err)
	}
}

type stubGuard struct{ loaded map[string]bool }

func (g stubGuard) Loaded(id string) bool { return g.loaded[id] }

func TestDeleteRefusesLoadedModel(t *testing.T) {
	dir := t.TempDir()
	m, err := models.NewManager(dir,
		models.WithStatfs(plentyOfSpace),
		models.WithLoadGuard(stubGuard{loaded: map[string]bool{"base": true}}),
	)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "ggml-base.bin")
	if err := os.WriteFile(path, []byte("model"), 0o644); err != nil {
		t.Fatal(err)
	}

	err = m.Delete("base")
	if !errors.Is(err, services.ErrModelInUse) {
		t.Fatalf("expected ErrModelInUse, got %v", err)
	}
	if _, statErr := os.Stat(path); statErr != nil {
		t.Fatal("model file must survive a refused delete")
	}
}

func TestDeleteRemovesModel(t *testing.T) {
	dir := t.TempDir()
	m, err := models.NewManager(dir, models.WithStatfs(plentyOfSpace))
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "ggml-small.bin")
	if err := os.WriteFile(path, []byte("model"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := m.Delete("small"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatal("expected model file removed")
	}
	if err := m.Delete("small"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing model, got %v", err)
	}
}

func TestListInstalled(t *testing.T) {
	dir := t.TempDir()
	m, err := models.NewManager(dir, models.WithStatfs(plentyOfSpace))
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"ggml-small.bin", "ggml-tiny.bin"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	installed, err := m.ListInstalled()
	if err != nil {
		t.Fatal(err)
	}
	if len(installed) != 2 {
		t.Fatalf("expected 2 installed models, got %d", len(installed))
	}
	if installed[0].Spec.ID != "tiny" || installed[1].Spec.ID != "small" {
		t.Fatalf("expected catalog order tiny,small; got %s,%s", installed[0].Spec.ID, installed[1].Spec.ID)
	}
}
