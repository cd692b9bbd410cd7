package trim

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

var mediaExtensions = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".mp4":  true,
	".m4a":  true,
	".aac":  true,
	".flac": true,
	".ogg":  true,
	".opus": true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
}

// FileError ties a pipeline failure to the file it happened on.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// Summary aggregates a batch run.
type Summary struct {
	Processed int
	Rewritten int
	Duration  time.Duration
	Final     time.Duration
	Failures  []FileError
}

// Saved is the total material removed across the batch.
func (s Summary) Saved() time.Duration {
	return s.Duration - s.Final
}

// Runner applies the pipeline to many files with a bounded worker pool.
// Each file is an independent unit; no two workers ever touch the same path.
type Runner struct {
	Workers  int
	Logger   *zap.Logger
	OnResult func(Result, error)

	processFn func(ctx context.Context, path string) (Result, error)
}

func NewRunner(pipeline *Pipeline, workers int, logger *zap.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		Workers:   workers,
		Logger:    logger,
		processFn: pipeline.Process,
	}
}

// Run expands args (files and directories) into a sorted file list and
// processes them. Per-file failures are collected in the summary rather than
// aborting the batch; only context cancellation and unusable args stop it.
func (r *Runner) Run(ctx context.Context, args []string) (Summary, error) {
	files, err := CollectFiles(args)
	if err != nil {
		return Summary{}, err
	}

	jobs := make(chan string)
	var (
		mu      sync.Mutex
		summary Summary
		wg      sync.WaitGroup
	)

	for i := 0; i < r.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				result, err := r.processFn(ctx, path)

				mu.Lock()
				if err != nil {
					summary.Failures = append(summary.Failures, FileError{Path: path, Err: err})
				} else {
					summary.Processed++
					summary.Duration += result.Duration
					summary.Final += result.Boundary
					if result.Rewritten {
						summary.Rewritten++
					}
				}
				mu.Unlock()

				if r.OnResult != nil {
					r.OnResult(result, err)
				}
			}
		}()
	}

	var ctxErr error
feed:
	for _, path := range files {
		select {
		case jobs <- path:
		case <-ctx.Done():
			ctxErr = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	sort.Slice(summary.Failures, func(i, j int) bool {
		return summary.Failures[i].Path < summary.Failures[j].Path
	})

	return summary, ctxErr
}

// CollectFiles expands files and directories into the media files to
// process, sorted by path. Directories are walked recursively; files are
// taken as given even when their extension is unknown.
func CollectFiles(args []string) ([]string, error) {
	var files []string
	seen := map[string]bool{}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}

		if !info.IsDir() {
			if !seen[arg] {
				seen[arg] = true
				files = append(files, arg)
			}
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
				return nil
			}
			if !mediaExtensions[strings.ToLower(filepath.Ext(path))] {
				return nil
			}
			if !seen[path] {
				seen[path] = true
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
	}

	sort.Strings(files)
	return files, nil
}
