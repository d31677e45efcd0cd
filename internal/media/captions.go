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
	"time"

	"github.com/google/uuid"

	"audioink/internal/language"
	"audioink/internal/logging"
	"audioink/internal/services"
)

// CaptionLine is one timed caption cue.
type CaptionLine struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Captions holds a source's published transcript.
type Captions struct {
	Language string
	Text     string
	Lines    []CaptionLine
}

// CaptionFetcher retrieves published captions for a remote source. Fetch
// returns ErrNotFound when the source has no captions in the requested
// language.
type CaptionFetcher interface {
	Fetch(ctx context.Context, url, lang string) (*Captions, error)
}

// SubtitleFetcher fetches captions through yt-dlp's subtitle download.
type SubtitleFetcher struct {
	binary  string
	workDir string
	exec    Executor
	logger  *slog.Logger
}

// SubtitleOption configures the fetcher.
type SubtitleOption func(*SubtitleFetcher)

// WithSubtitleExecutor injects a custom executor (primarily for tests).
func WithSubtitleExecutor(exec Executor) SubtitleOption {
	return func(f *SubtitleFetcher) {
		if exec != nil {
			f.exec = exec
		}
	}
}

// WithSubtitleLogger attaches a logger to the fetcher.
func WithSubtitleLogger(logger *slog.Logger) SubtitleOption {
	return func(f *SubtitleFetcher) {
		f.logger = logging.NewComponentLogger(logger, "media")
	}
}

// NewSubtitleFetcher constructs a fetcher around the given yt-dlp binary.
func NewSubtitleFetcher(binary, workDir string, opts ...SubtitleOption) (*SubtitleFetcher, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("yt-dlp binary required")
	}
	if strings.TrimSpace(workDir) == "" {
		return nil, errors.New("work directory required")
	}
	f := &SubtitleFetcher{
		binary:  binary,
		workDir: workDir,
		exec:    commandExecutor{},
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f, nil
}

// Fetch downloads the source's captions in the requested language and parses
// them into timed lines. lang "auto" or empty falls back to English. Manual
// subtitles win over auto-generated ones when both exist.
func (f *SubtitleFetcher) Fetch(ctx context.Context, url, lang string) (*Captions, error) {
	lang = language.Normalize(lang)
	if lang == "" || language.IsAuto(lang) {
		lang = "en"
	}

	dir := filepath.Join(f.workDir, "captions-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure captions directory: %w", err)
	}
	defer os.RemoveAll(dir)

	args := []string{
		"--skip-download",
		"--write-subs",
		"--write-auto-subs",
		"--sub-format", "vtt",
		"--sub-langs", lang,
		"-o", filepath.Join(dir, "captions"),
		"--no-playlist",
		"--no-warnings",
		url,
	}

	var out bytes.Buffer
	stderr, err := f.exec.Run(ctx, f.binary, args, &out)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, services.Wrap(services.ErrExternalTool, "media", "captions", lastLine(stderr, "yt-dlp failed"), err)
	}

	path, err := findSubtitleFile(dir)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read captions: %w", err)
	}

	lines := parseVTT(string(data))
	if len(lines) == 0 {
		return nil, services.Wrap(services.ErrNotFound, "media", "captions", "no caption cues found", nil)
	}

	f.logger.Debug("fetched captions",
		logging.String(logging.FieldSource, url),
		logging.String(logging.FieldLanguage, lang),
		logging.Int("cues", len(lines)),
	)
	return &Captions{
		Language: lang,
		Text:     joinCaptionText(lines),
		Lines:    lines,
	}, nil
}

func findSubtitleFile(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.vtt"))
	if err != nil {
		return "", fmt.Errorf("scan captions directory: %w", err)
	}
	if len(matches) == 0 {
		return "", services.Wrap(services.ErrNotFound, "media", "captions", "no captions available", nil)
	}
	// yt-dlp names auto subs with the same pattern as manual ones; with a
	// single requested language at most two files appear, sorted stably.
	return matches[0], nil
}

func joinCaptionText(lines []CaptionLine) string {
	parts := make([]string, 0, len(lines))
	for _, line := range lines {
		parts = append(parts, line.Text)
	}
	return strings.Join(parts, " ")
}
