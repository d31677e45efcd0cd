// Package media wraps the external tools the pipeline shells out to:
// yt-dlp for remote audio and captions, ffmpeg for tempo adjustment.
package media

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"
)

// Executor abstracts command execution for testability.
type Executor interface {
	// Run executes binary with args, streaming stdout into the writer.
	// It returns captured stderr output alongside any execution error.
	Run(ctx context.Context, binary string, args []string, stdout io.Writer) (string, error)
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

func lastLine(output, fallback string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return fallback
}
