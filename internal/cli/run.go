package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/mfriedel/voxtrim/internal/ffmpeg"
	"github.com/mfriedel/voxtrim/internal/platform"
	"github.com/mfriedel/voxtrim/internal/transcribe"
	"github.com/mfriedel/voxtrim/internal/trim"
	"go.uber.org/zap"
)

func (a *appState) runTrim(ctx context.Context, args []string) error {
	files, err := trim.CollectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		a.log().Warn("no media files found", zap.Strings("args", args))
		return nil
	}

	runBatchFn := a.runBatchFn
	if runBatchFn == nil {
		runBatchFn = a.runBatch
	}

	started := time.Now()
	summary, err := runBatchFn(ctx, files)
	if err != nil {
		return err
	}

	if err := a.writeSidecars(args); err != nil {
		return err
	}

	a.log().Info("batch finished",
		zap.Int("processed", summary.Processed),
		zap.Int("rewritten", summary.Rewritten),
		zap.Int("failed", len(summary.Failures)),
		zap.String("total_duration", humanTime(summary.Duration)),
		zap.String("saved", humanTime(summary.Saved())),
		zap.Duration("elapsed", time.Since(started)),
	)

	if a.doTranscribe && !a.dryRun {
		if err := a.transcribeBatch(ctx, files, summary); err != nil {
			return err
		}
	}

	if n := len(summary.Failures); n > 0 {
		for _, failure := range summary.Failures {
			a.log().Error("file failed", zap.String("path", failure.Path), zap.Error(failure.Err))
		}
		return fmt.Errorf("%d of %d files failed", n, len(files))
	}

	return nil
}

func (a *appState) runBatch(ctx context.Context, files []string) (trim.Summary, error) {
	opts, err := a.trimOptions()
	if err != nil {
		return trim.Summary{}, err
	}

	tool, err := a.resolveTool()
	if err != nil {
		return trim.Summary{}, err
	}

	pipeline := trim.NewPipeline(tool, a.log(), opts)
	runner := trim.NewRunner(pipeline, a.workers, a.log())

	bar := startFileProgress(a.progressEnabled(), "Trimming", len(files))
	defer bar.finish()

	var mu sync.Mutex
	runner.OnResult = func(result trim.Result, err error) {
		mu.Lock()
		defer mu.Unlock()
		bar.step()
		if err != nil {
			return
		}
		if result.Rewritten {
			a.log().Info("trimmed",
				zap.String("path", result.Path),
				zap.String("duration", humanTime(result.Duration)),
				zap.String("new_duration", humanTime(result.Boundary)),
			)
		} else {
			a.log().Debug("nothing to trim", zap.String("path", result.Path), zap.Int("segments", result.Segments))
		}
	}

	return runner.Run(ctx, files)
}

func (a *appState) resolveTool() (*ffmpeg.Tool, error) {
	ffmpegPath, err := platform.FindTool(a.ffmpegPath, "ffmpeg")
	if err != nil {
		return nil, err
	}
	ffprobePath, err := platform.FindTool(a.ffprobePath, "ffprobe")
	if err != nil {
		return nil, err
	}
	return ffmpeg.NewTool(ffmpegPath, ffprobePath, a.log()), nil
}

// writeSidecars records the run parameters into every directory argument so
// the trim can be reproduced.
func (a *appState) writeSidecars(args []string) error {
	if a.dryRun {
		return nil
	}

	opts, err := a.trimOptions()
	if err != nil {
		return err
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			continue
		}
		if err := trim.WriteParameters(arg, opts); err != nil {
			return err
		}
	}

	return nil
}

func (a *appState) transcribeBatch(ctx context.Context, files []string, summary trim.Summary) error {
	transcribeFn := a.transcribeFn
	if transcribeFn == nil {
		runner, err := transcribe.NewCommandRunner(a.transcribeCmd, transcribe.Config{
			Model:    a.model,
			Language: sanitizeLanguage(a.language),
		}, a.log())
		if err != nil {
			return err
		}
		transcribeFn = runner.Transcribe
	}

	failed := map[string]bool{}
	for _, failure := range summary.Failures {
		failed[failure.Path] = true
	}

	for _, path := range files {
		if failed[path] {
			continue
		}
		if a.normalize && !strings.EqualFold(filepath.Ext(path), ".wav") {
			path = strings.TrimSuffix(path, filepath.Ext(path)) + ".wav"
		}

		a.log().Info("transcribing", zap.String("path", path))
		stop := startSpinner(a.progressEnabled(), "Transcribing")
		err := transcribeFn(ctx, path)
		stop()
		if err != nil {
			return err
		}
	}

	return nil
}

func sanitizeLanguage(input string) string {
	trimmed := strings.TrimSpace(strings.ToLower(input))
	if trimmed == "" {
		return "auto"
	}
	return trimmed
}

// humanTime renders a duration as HH:MM:SS.mmm.
func humanTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hours := int(d / time.Hour)
	d -= time.Duration(hours) * time.Hour
	minutes := int(d / time.Minute)
	d -= time.Duration(minutes) * time.Minute
	return fmt.Sprintf("%02d:%02d:%06.3f", hours, minutes, d.Seconds())
}
