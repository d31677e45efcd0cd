package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"audioink/internal/fileutil"
	"audioink/internal/logging"
	"audioink/internal/services"
)

// fallbackTitle names a remote source whose title could not be fetched.
const fallbackTitle = "Remote Audio"

// audioFallbackExtensions covers formats yt-dlp may leave behind when the
// wav conversion step is skipped or renamed.
var audioFallbackExtensions = []string{".wav", ".m4a", ".mp3", ".webm", ".opus"}

// Extraction is the result of pulling audio from a remote source.
type Extraction struct {
	Path  string
	Title string
}

// Extractor downloads remote audio as WAV via yt-dlp.
type Extractor struct {
	binary  string
	workDir string
	exec    Executor
	logger  *slog.Logger
}

// ExtractorOption configures the extractor.
type ExtractorOption func(*Extractor)

// WithExtractorExecutor injects a custom executor (primarily for tests).
func WithExtractorExecutor(exec Executor) ExtractorOption {
	return func(e *Extractor) {
		if exec != nil {
			e.exec = exec
		}
	}
}

// WithExtractorLogger attaches a logger to the extractor.
func WithExtractorLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = logging.NewComponentLogger(logger, "media")
	}
}

// NewExtractor constructs an extractor around the given yt-dlp binary.
// Extracted files are written under workDir.
func NewExtractor(binary, workDir string, opts ...ExtractorOption) (*Extractor, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	if strings.TrimSpace(workDir) == "" {
		return nil, errors.New("work directory required")
	}
	e := &Extractor{
		binary:  binary,
		workDir: workDir,
		exec:    commandExecutor{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Title fetches the remote source's title.
func (e *Extractor) Title(ctx context.Context, url string) (string, error) {
	var out bytes.Buffer
	stderr, err := e.exec.Run(ctx, e.binary, []string{"--get-title", "--no-playlist", "--no-warnings", url}, &out)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", services.Wrap(services.ErrExternalTool, "media", "title", lastLine(stderr, "yt-dlp failed"), err)
	}
	return strings.TrimSpace(out.String()), nil
}

// Extract downloads the source's audio track converted to WAV. A failed title
// lookup is not fatal; the extraction proceeds under a fallback title. The
// caller owns the returned file and removes it via Cleanup.
func (e *Extractor) Extract(ctx context.Context, url string) (*Extraction, error) {
	if err := os.MkdirAll(e.workDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure work directory: %w", err)
	}

	title, err := e.Title(ctx, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		e.logger.Warn("title lookup failed",
			logging.String(logging.FieldSource, url),
			logging.Error(err),
		)
	}
	if title == "" {
		title = fallbackTitle
	}

	// The sanitized title keeps the work dir readable; the uuid suffix avoids
	// collisions between extractions of identically titled sources.
	stem := fileutil.SanitizeFileName(title) + "-" + uuid.NewString()
	template := filepath.Join(e.workDir, stem+".%(ext)s")
	args := []string{
		"-x",
		"--audio-format", "wav",
		"--audio-quality", "0",
		"-o", template,
		"--no-playlist",
		"--no-warnings",
		url,
	}

	var out bytes.Buffer
	stderr, err := e.exec.Run(ctx, e.binary, args, &out)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, services.Wrap(services.ErrExternalTool, "media", "extract", lastLine(stderr, "yt-dlp failed"), err)
	}

	path, err := e.locateOutput(stem)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("extracted remote audio",
		logging.String(logging.FieldSource, url),
		logging.String("path", path),
	)
	return &Extraction{Path: path, Title: title}, nil
}

func (e *Extractor) locateOutput(stem string) (string, error) {
	wav := filepath.Join(e.workDir, stem+".wav")
	if _, err := os.Stat(wav); err == nil {
		return wav, nil
	}
	for _, ext := range audioFallbackExtensions {
		candidate := filepath.Join(e.workDir, stem+ext)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", services.Wrap(services.ErrExternalTool, "media", "extract", "extracted audio not found", nil)
}

// Cleanup removes an extracted file. Paths outside the work directory are
// left alone.
func (e *Extractor) Cleanup(path string) {
	if path == "" || filepath.Dir(path) != filepath.Clean(e.workDir) {
		return
	}
	_ = os.Remove(path)
}
