package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

var ErrBoundaryOutOfRange = errors.New("trim boundary outside stream")

// Rewrite truncates the file at boundary, carrying every metadata tag over,
// and atomically replaces the original. It reports whether the file was
// rewritten: boundary == total is a no-op and touches nothing.
//
// The trimmed copy is staged as a hidden temp file in the same directory and
// renamed over the source only once ffmpeg has fully written it, so any
// failure or cancellation leaves the original byte-identical.
func (t *Tool) Rewrite(ctx context.Context, path string, boundary, total time.Duration) (bool, error) {
	if boundary < 0 || boundary > total {
		return false, fmt.Errorf("%w: boundary %s, stream %s", ErrBoundaryOutOfRange, boundary, total)
	}

	if boundary == total {
		t.Logger.Debug("boundary equals stream duration, skipping rewrite", zap.String("path", path))
		return false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("stat source %s: %w", path, err)
	}

	tmpPath, err := stagingPath(path)
	if err != nil {
		return false, err
	}

	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", path,
		"-t", formatSeconds(boundary),
		"-map_metadata", "0",
		"-c", "copy",
		tmpPath,
	}

	_, stderr, err := t.run(ctx, t.FFmpegPath, args...)
	if err != nil {
		_ = os.Remove(tmpPath)
		return false, commandFailure(t.FFmpegPath, args, stderr, err)
	}

	if err := ctx.Err(); err != nil {
		_ = os.Remove(tmpPath)
		return false, err
	}

	if err := os.Chmod(tmpPath, info.Mode()); err != nil {
		_ = os.Remove(tmpPath)
		return false, fmt.Errorf("restore permissions on %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return false, fmt.Errorf("replace %s: %w", path, err)
	}

	t.Logger.Debug("rewrote file at boundary",
		zap.String("path", path),
		zap.Duration("boundary", boundary),
		zap.Duration("trimmed", total-boundary),
	)

	return true, nil
}

// stagingPath builds a temp path in the source's directory so the final
// rename never crosses a filesystem. The original extension is kept because
// ffmpeg picks the output muxer from it.
func stagingPath(path string) (string, error) {
	dir := filepath.Dir(path)
	ext := filepath.Ext(path)
	base := filepath.Base(path)
	base = base[:len(base)-len(ext)]

	f, err := os.CreateTemp(dir, "."+base+".*"+ext)
	if err != nil {
		return "", fmt.Errorf("create staging file in %s: %w", dir, err)
	}
	tmpPath := f.Name()
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return "", fmt.Errorf("close staging file %s: %w", tmpPath, err)
	}

	return tmpPath, nil
}

func formatSeconds(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}
