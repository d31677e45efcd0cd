package audio

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"strings"

	"audioink/internal/logging"
	"audioink/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	// Run executes binary with args, streaming stdout into the writer.
	// It returns captured stderr output alongside any execution error.
	Run(ctx context.Context, binary string, args []string, stdout io.Writer) (string, error)
}

// Option configures the decoder.
type Option func(*Decoder)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(d *Decoder) {
		if exec != nil {
			d.exec = exec
		}
	}
}

// WithLogger attaches a logger to the decoder.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Decoder) {
		d.logger = logging.NewComponentLogger(logger, "audio")
	}
}

// Decoder converts media files into mono 16 kHz PCM via ffmpeg.
type Decoder struct {
	binary string
	exec   Executor
	logger *slog.Logger
}

// NewDecoder constructs a decoder around the given ffmpeg binary.
func NewDecoder(binary string, opts ...Option) (*Decoder, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("ffmpeg binary required")
	}
	d := &Decoder{
		binary: binary,
		exec:   commandExecutor{},
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// Decode reads the file at path and returns its audio as a Buffer. Video
// containers have their first audio stream extracted. Unrecognized containers
// fail with ErrUnsupportedFormat; streams that break mid-decode fail with
// ErrCorruptStream and any partial output is discarded.
func (d *Decoder) Decode(ctx context.Context, path string) (*Buffer, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "audio", "decode", path, nil)
		}
		return nil, fmt.Errorf("stat input: %w", err)
	}
	if !IsSupportedFormat(path) {
		return nil, services.Wrap(services.ErrUnsupportedFormat, "audio", "decode", fmt.Sprintf("unrecognized container %q", strings.ToLower(path)), nil)
	}

	args := []string{
		"-hide_banner",
		"-nostdin",
		"-i", path,
		"-vn",
		"-f", "f32le",
		"-ac", "1",
		"-ar", fmt.Sprint(SampleRate),
		"pipe:1",
	}

	var pcm bytes.Buffer
	stderr, err := d.exec.Run(ctx, d.binary, args, &pcm)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		reason := lastLine(stderr)
		if pcm.Len() == 0 {
			return nil, services.Wrap(services.ErrUnsupportedFormat, "audio", "decode", reason, err)
		}
		// Partial PCM from a broken stream is unusable.
		return nil, services.Wrap(services.ErrCorruptStream, "audio", "decode", reason, err)
	}

	buf := NewBuffer(samplesFromLE(pcm.Bytes()))
	d.logger.Debug("decoded audio",
		logging.String(logging.FieldSource, path),
		logging.Int("samples", buf.Len()),
		logging.Duration("duration", buf.Duration()),
	)
	return buf, nil
}

func samplesFromLE(raw []byte) []float32 {
	count := len(raw) / 4
	samples := make([]float32, count)
	for i := 0; i < count; i++ {
		bits := binary.LittleEndian.Uint32(raw[i*4:])
		samples[i] = math.Float32frombits(bits)
	}
	return samples
}

func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "ffmpeg failed"
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, stdout io.Writer) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stderr bytes.Buffer
	cmd.Stdout = stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stderr.String(), err
}
