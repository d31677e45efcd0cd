package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"

	"audioink/internal/fileutil"
	"audioink/internal/logging"
	"audioink/internal/services"
)

// ProgressFunc receives download progress. total is zero when the server did
// not report a length and the catalog size is unknown.
type ProgressFunc func(downloaded, total int64)

// LoadGuard lets the manager check whether a model is held by the inference
// engine before deleting it.
type LoadGuard interface {
	Loaded(modelID string) bool
}

// Status describes one model's on-disk state.
type Status struct {
	Spec       Spec
	Installed  bool
	Path       string
	SizeOnDisk int64
}

// Option configures the manager.
type Option func(*Manager)

// WithHTTPClient injects a custom HTTP client (primarily for tests).
func WithHTTPClient(client *http.Client) Option {
	return func(m *Manager) {
		if client != nil {
			m.client = client
		}
	}
}

// WithBaseURL overrides the download mirror.
func WithBaseURL(baseURL string) Option {
	return func(m *Manager) {
		if trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/"); trimmed != "" {
			m.baseURL = trimmed
		}
	}
}

// WithLoadGuard wires the engine's loaded-model check into deletion.
func WithLoadGuard(guard LoadGuard) Option {
	return func(m *Manager) {
		m.guard = guard
	}
}

// WithLogger attaches a logger to the manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logging.NewComponentLogger(logger, "models")
	}
}

// WithTimeout caps each download.
func WithTimeout(timeout time.Duration) Option {
	return func(m *Manager) {
		if timeout > 0 {
			m.timeout = timeout
		}
	}
}

const defaultDownloadURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// Manager installs and removes whisper models under a single directory.
type Manager struct {
	dir     string
	baseURL string
	client  *http.Client
	timeout time.Duration
	guard   LoadGuard
	statfs  statfsFunc
	logger  *slog.Logger
}

// NewManager constructs a manager rooted at dir.
func NewManager(dir string, opts ...Option) (*Manager, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("models directory required")
	}
	m := &Manager{
		dir:     dir,
		baseURL: defaultDownloadURL,
		client:  http.DefaultClient,
		timeout: time.Hour,
		statfs:  realStatfs,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Dir returns the install directory.
func (m *Manager) Dir() string {
	return m.dir
}

// Path returns where the model file for id lives (installed or not).
func (m *Manager) Path(id string) (string, error) {
	spec, err := Lookup(id)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "models", "path", "", err)
	}
	return filepath.Join(m.dir, spec.FileName), nil
}

// Status reports the on-disk state of one model.
func (m *Manager) Status(id string) (Status, error) {
	spec, err := Lookup(id)
	if err != nil {
		return Status{}, services.Wrap(services.ErrNotFound, "models", "status", "", err)
	}
	path := filepath.Join(m.dir, spec.FileName)
	size := fileutil.FileSize(path)
	return Status{
		Spec:       spec,
		Installed:  size > 0,
		Path:       path,
		SizeOnDisk: size,
	}, nil
}

// List returns the status of every catalog model in catalog order.
func (m *Manager) List() ([]Status, error) {
	specs := Catalog()
	sortSpecs(specs)
	out := make([]Status, 0, len(specs))
	for _, spec := range specs {
		status, err := m.Status(spec.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, status)
	}
	return out, nil
}

// ListInstalled returns only the models present on disk.
func (m *Manager) ListInstalled() ([]Status, error) {
	all, err := m.List()
	if err != nil {
		return nil, err
	}
	installed := all[:0]
	for _, status := range all {
		if status.Installed {
			installed = append(installed, status)
		}
	}
	return installed, nil
}

// Download fetches the model into the install directory. The transfer streams
// to a .partial file that is atomically renamed only after the byte count
// matches the server-reported length; a mismatch removes the partial and
// fails with an integrity error. A second download of the same model in
// another process is rejected while the first holds the lock.
func (m *Manager) Download(ctx context.Context, id string, progress ProgressFunc) (string, error) {
	spec, err := Lookup(id)
	if err != nil {
		return "", services.Wrap(services.ErrNotFound, "models", "download", "", err)
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("create models directory: %w", err)
	}

	finalPath := filepath.Join(m.dir, spec.FileName)
	if fileutil.FileSize(finalPath) > 0 {
		return finalPath, nil
	}

	if err := m.checkFreeSpace(spec.Size); err != nil {
		return "", err
	}

	lock := flock.New(filepath.Join(m.dir, spec.FileName+".lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return "", fmt.Errorf("acquire download lock: %w", err)
	}
	if !locked {
		return "", services.Wrap(services.ErrDownload, "models", "download", fmt.Sprintf("%s is already being downloaded", spec.ID), nil)
	}
	defer func() {
		_ = lock.Unlock()
		_ = os.Remove(lock.Path())
	}()

	// Re-check after taking the lock; another process may have finished.
	if fileutil.FileSize(finalPath) > 0 {
		return finalPath, nil
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	url := m.baseURL + "/" + spec.FileName
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	resp, err := m.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", services.Wrap(services.ErrDownload, "models", "download", spec.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrDownload, "models", "download", fmt.Sprintf("%s: HTTP %d", spec.ID, resp.StatusCode), nil)
	}

	expected := resp.ContentLength
	total := expected
	if total <= 0 {
		total = spec.Size
	}

	partialPath := finalPath + ".partial"
	written, err := m.streamToFile(ctx, resp.Body, partialPath, total, spec.ID, progress)
	if err != nil {
		_ = os.Remove(partialPath)
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		return "", services.Wrap(services.ErrDownload, "models", "download", spec.ID, err)
	}

	if expected > 0 && written != expected {
		_ = os.Remove(partialPath)
		return "", services.Wrap(services.ErrIntegrity, "models", "download",
			fmt.Sprintf("%s: expected %d bytes, got %d", spec.ID, expected, written), nil)
	}

	if err := os.Rename(partialPath, finalPath); err != nil {
		_ = os.Remove(partialPath)
		return "", fmt.Errorf("install model: %w", err)
	}

	m.logger.Info("model installed",
		logging.String(logging.FieldModel, spec.ID),
		logging.Int64("size_bytes", written),
	)
	return finalPath, nil
}

func (m *Manager) streamToFile(ctx context.Context, body io.Reader, path string, total int64, modelID string, progress ProgressFunc) (int64, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return 0, fmt.Errorf("create partial file: %w", err)
	}
	defer file.Close()

	sampler := logging.NewProgressSampler(10)
	var written int64
	buf := make([]byte, 256*1024)
	for {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		n, readErr := body.Read(buf)
		if n > 0 {
			if _, err := file.Write(buf[:n]); err != nil {
				return written, fmt.Errorf("write partial file: %w", err)
			}
			written += int64(n)
			if progress != nil {
				progress(written, total)
			}
			if total > 0 {
				percent := float64(written) / float64(total) * 100
				if sampler.ShouldLog(percent, "downloading") {
					m.logger.Info("downloading model",
						logging.String(logging.FieldModel, modelID),
						logging.Int64(logging.FieldBytesDownloaded, written),
						logging.Int64(logging.FieldBytesTotal, total),
					)
				}
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return written, readErr
		}
	}
	if err := file.Close(); err != nil {
		return written, fmt.Errorf("close partial file: %w", err)
	}
	return written, nil
}

// Delete removes an installed model. It refuses while the inference engine
// holds the model loaded; release the model first ("models delete --force"
// does this).
func (m *Manager) Delete(id string) error {
	spec, err := Lookup(id)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "models", "delete", "", err)
	}
	if m.guard != nil && m.guard.Loaded(spec.ID) {
		return services.Wrap(services.ErrModelInUse, "models", "delete",
			fmt.Sprintf("%s is loaded by the inference engine", spec.ID), nil)
	}
	path := filepath.Join(m.dir, spec.FileName)
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, "models", "delete", fmt.Sprintf("%s is not installed", spec.ID), nil)
		}
		return fmt.Errorf("remove model: %w", err)
	}
	m.logger.Info("model deleted", logging.String(logging.FieldModel, spec.ID))
	return nil
}
