package services_test

import (
	"errors"
	"strings"
	"testing"

	"audioink/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "decoding", "ffmpeg", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"decoding", "ffmpeg", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutBaseError(t *testing.T) {
	err := services.Wrap(services.ErrModelNotReady, "model", "status", "not installed", nil)
	if !errors.Is(err, services.ErrModelNotReady) {
		t.Fatalf("expected marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "not installed") {
		t.Fatalf("expected message in %q", err.Error())
	}
}

func TestRetryable(t *testing.T) {
	deterministic := []error{
		services.ErrInvalidOptions,
		services.ErrUnsupportedFormat,
		services.ErrCorruptStream,
		services.ErrIntegrity,
		services.ErrNotFound,
	}
	for _, sentinel := range deterministic {
		wrapped := services.Wrap(sentinel, "job", "run", "deterministic", nil)
		if services.Retryable(wrapped) {
			t.Fatalf("expected %v to be non-retryable", sentinel)
		}
	}
	transient := services.Wrap(services.ErrDownload, "model", "fetch", "network", errors.New("timeout"))
	if !services.Retryable(transient) {
		t.Fatalf("expected download failure to be retryable")
	}
}
