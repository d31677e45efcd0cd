package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"audioink/internal/logging"
	"audioink/internal/services"
)

// Speed factor bounds. ffmpeg's atempo filter accepts up to 2.0 in a single
// pass, and anything past that degrades transcription quality anyway.
const (
	MinSpeedFactor = 1.0
	MaxSpeedFactor = 2.0
)

// speedEpsilon is the band around 1.0 treated as "no change".
const speedEpsilon = 0.01

// Retimer speeds audio up with ffmpeg's atempo filter.
type Retimer struct {
	binary  string
	workDir string
	exec    Executor
	logger  *slog.Logger
}

// RetimerOption configures the retimer.
type RetimerOption func(*Retimer)

// WithRetimerExecutor injects a custom executor (primarily for tests).
func WithRetimerExecutor(exec Executor) RetimerOption {
	return func(r *Retimer) {
		if exec != nil {
			r.exec = exec
		}
	}
}

// WithRetimerLogger attaches a logger to the retimer.
func WithRetimerLogger(logger *slog.Logger) RetimerOption {
	return func(r *Retimer) {
		r.logger = logging.NewComponentLogger(logger, "media")
	}
}

// NewRetimer constructs a retimer around the given ffmpeg binary.
func NewRetimer(binary, workDir string, opts ...RetimerOption) (*Retimer, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	if strings.TrimSpace(workDir) == "" {
		return nil, errors.New("work directory required")
	}
	r := &Retimer{
		binary:  binary,
		workDir: workDir,
		exec:    commandExecutor{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Retime writes a sped-up copy of the input and returns its path. A factor
// within epsilon of 1.0 returns the input path unchanged; the caller can tell
// whether a temp file was produced by comparing paths, or just call Cleanup,
// which ignores paths outside the work directory.
func (r *Retimer) Retime(ctx context.Context, inputPath string, factor float64) (string, error) {
	if factor < MinSpeedFactor || factor > MaxSpeedFactor {
		return "", services.Wrap(services.ErrInvalidOptions, "media", "retime",
			fmt.Sprintf("speed factor %.2f outside [%.1f, %.1f]", factor, MinSpeedFactor, MaxSpeedFactor), nil)
	}
	if math.Abs(factor-1.0) < speedEpsilon {
		return inputPath, nil
	}
	if err := os.MkdirAll(r.workDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure work directory: %w", err)
	}

	outputPath := filepath.Join(r.workDir, "retimed-"+uuid.NewString()+".wav")
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-i", inputPath,
		"-filter:a", fmt.Sprintf("atempo=%g", factor),
		"-vn",
		"-y",
		outputPath,
	}

	var out bytes.Buffer
	stderr, err := r.exec.Run(ctx, r.binary, args, &out)
	if err != nil {
		_ = os.Remove(outputPath)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", services.Wrap(services.ErrExternalTool, "media", "retime", lastLine(stderr, "ffmpeg failed"), err)
	}
	if _, err := os.Stat(outputPath); err != nil {
		return "", services.Wrap(services.ErrExternalTool, "media", "retime", "retimed audio not found", nil)
	}

	r.logger.Debug("retimed audio",
		logging.String(logging.FieldSource, inputPath),
		logging.Float64("factor", factor),
	)
	return outputPath, nil
}

// Cleanup removes a retimed temp file. The original input (returned unchanged
// for factor 1.0) lives outside the work directory and is left alone.
func (r *Retimer) Cleanup(path string) {
	if path == "" || filepath.Dir(path) != filepath.Clean(r.workDir) {
		return
	}
	_ = os.Remove(path)
}
