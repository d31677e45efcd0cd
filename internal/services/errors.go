package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidOptions    = errors.New("invalid options")
	ErrModelNotReady     = errors.New("model not ready")
	ErrModelInUse        = errors.New("model in use")
	ErrJobInProgress     = errors.New("job in progress")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrCorruptStream     = errors.New("corrupt stream")
	ErrInfer             = errors.New("inference error")
	ErrDownload          = errors.New("download error")
	ErrIntegrity         = errors.New("integrity error")
	ErrNotFound          = errors.New("not found")
	ErrExternalTool      = errors.New("external tool error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrInfer
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Retryable reports whether an error kind is worth retrying with the same
// inputs. Option, format, and integrity failures are deterministic.
func Retryable(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidOptions),
		errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrCorruptStream),
		errors.Is(err, ErrIntegrity),
		errors.Is(err, ErrNotFound):
		return false
	}
	return true
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
