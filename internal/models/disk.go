package models

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"audioink/internal/services"
)

// statfsFunc allows tests to stub filesystem stats.
type statfsFunc func(path string) (free uint64, err error)

// WithStatfs injects a filesystem stats stub (primarily for tests).
func WithStatfs(fn statfsFunc) Option {
	return func(m *Manager) {
		if fn != nil {
			m.statfs = fn
		}
	}
}

func realStatfs(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, err
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// checkFreeSpace rejects a download when the install volume cannot hold the
// model. The catalog size is approximate, so a small slack is added on top.
func (m *Manager) checkFreeSpace(need int64) error {
	if need <= 0 {
		return nil
	}
	dir := m.dir
	if _, err := os.Stat(dir); err != nil {
		// Cannot stat the install dir; let the download surface the error.
		return nil
	}
	free, err := m.statfs(dir)
	if err != nil {
		return fmt.Errorf("statfs %q: %w", dir, err)
	}
	needed := uint64(need) + uint64(need)/10
	if free < needed {
		return services.Wrap(services.ErrDownload, "models", "preflight",
			fmt.Sprintf("insufficient disk space: need about %d bytes, %d available", needed, free), nil)
	}
	return nil
}
