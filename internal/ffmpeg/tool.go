// Package ffmpeg drives the external ffmpeg/ffprobe binaries: probing stream
// duration and tags, detecting silence intervals, and rewriting files at a
// trim boundary.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"go.uber.org/zap"
)

// Tool wraps the ffmpeg and ffprobe executables. The zero value is not
// usable; construct with NewTool.
type Tool struct {
	FFmpegPath  string
	FFprobePath string
	Logger      *zap.Logger

	run runFunc
}

type runFunc func(ctx context.Context, name string, args ...string) (stdout, stderr []byte, err error)

func NewTool(ffmpegPath, ffprobePath string, logger *zap.Logger) *Tool {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tool{
		FFmpegPath:  ffmpegPath,
		FFprobePath: ffprobePath,
		Logger:      logger,
		run:         runCommand,
	}
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

func commandFailure(name string, args []string, stderr []byte, err error) error {
	trimmed := strings.TrimSpace(string(stderr))
	if trimmed != "" {
		return fmt.Errorf("%s %s failed: %w (%s)", name, strings.Join(args, " "), err, trimmed)
	}
	return fmt.Errorf("%s %s failed: %w", name, strings.Join(args, " "), err)
}
