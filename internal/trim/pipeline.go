// Package trim runs the per-file trimming pipeline and the batch runner
// that applies it across many files.
package trim

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mfriedel/voxtrim/internal/audio"
	"github.com/mfriedel/voxtrim/internal/ffmpeg"
	"go.uber.org/zap"
)

// Provider selects where silence segments come from.
type Provider string

const (
	// ProviderAuto scans WAV files natively and uses ffmpeg for
	// everything else.
	ProviderAuto Provider = "auto"
	// ProviderWAV forces the native PCM WAV scanner.
	ProviderWAV Provider = "wav"
	// ProviderFFmpeg forces ffmpeg silencedetect.
	ProviderFFmpeg Provider = "ffmpeg"
)

// Options configures a pipeline. Threshold and minimum-silence shape the
// segment providers only; the boundary resolver takes no parameters.
type Options struct {
	Provider    Provider
	ThresholdDB float64
	MinSilence  time.Duration

	// Normalize converts non-WAV sources into a uniform PCM WAV sibling
	// before detection; the trim then applies to the WAV copy and the
	// source is left untouched.
	Normalize     bool
	NormalizeOpts ffmpeg.NormalizeOpts

	// DryRun resolves the boundary but never rewrites.
	DryRun bool
}

// Result reports what happened to a single file.
type Result struct {
	Path      string
	Duration  time.Duration
	Boundary  time.Duration
	Segments  int
	Rewritten bool
}

// Trimmed is how much material the boundary cut off.
func (r Result) Trimmed() time.Duration {
	return r.Duration - r.Boundary
}

// Pipeline is the sequential per-file flow: probe, obtain silence segments,
// resolve the boundary, rewrite. It holds no mutable state between files and
// is safe for concurrent use on distinct paths.
type Pipeline struct {
	opts   Options
	logger *zap.Logger

	probeFn   func(ctx context.Context, path string) (ffmpeg.ProbeInfo, error)
	detectFn  func(ctx context.Context, path string, total time.Duration) ([]audio.Segment, error)
	scanFn    func(path string) ([]audio.Segment, time.Duration, error)
	rewriteFn func(ctx context.Context, path string, boundary, total time.Duration) (bool, error)
	convertFn func(ctx context.Context, src, dst string) error
}

func NewPipeline(tool *ffmpeg.Tool, logger *zap.Logger, opts Options) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Provider == "" {
		opts.Provider = ProviderAuto
	}

	detectOpts := ffmpeg.DetectOptions{ThresholdDB: opts.ThresholdDB, MinSilence: opts.MinSilence}
	scanOpts := audio.ScanOptions{ThresholdDBFS: opts.ThresholdDB, MinSilence: opts.MinSilence}

	return &Pipeline{
		opts:   opts,
		logger: logger,
		probeFn: func(ctx context.Context, path string) (ffmpeg.ProbeInfo, error) {
			return tool.Probe(ctx, path)
		},
		detectFn: func(ctx context.Context, path string, total time.Duration) ([]audio.Segment, error) {
			return tool.DetectSilence(ctx, path, total, detectOpts)
		},
		scanFn: func(path string) ([]audio.Segment, time.Duration, error) {
			return audio.ScanWAV(path, scanOpts)
		},
		rewriteFn: tool.Rewrite,
		convertFn: func(ctx context.Context, src, dst string) error {
			return tool.Convert(ctx, src, dst, opts.NormalizeOpts)
		},
	}
}

// Process trims trailing silence from one file. On any error the file on
// disk is left exactly as it was.
func (p *Pipeline) Process(ctx context.Context, path string) (Result, error) {
	ext := strings.ToLower(filepath.Ext(path))

	if p.opts.Normalize && ext != ".wav" {
		wavPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".wav"
		if err := p.convertFn(ctx, path, wavPath); err != nil {
			return Result{Path: path}, fmt.Errorf("normalize %s: %w", path, err)
		}
		p.logger.Debug("normalized source", zap.String("src", path), zap.String("dst", wavPath))
		path, ext = wavPath, ".wav"
	}

	total, segments, err := p.segments(ctx, path, ext)
	if err != nil {
		return Result{Path: path}, err
	}

	boundary, err := audio.ResolveBoundary(total, segments)
	if err != nil {
		return Result{Path: path}, fmt.Errorf("resolve boundary for %s: %w", path, err)
	}

	result := Result{
		Path:     path,
		Duration: total,
		Boundary: boundary,
		Segments: len(segments),
	}

	if p.opts.DryRun {
		return result, nil
	}

	rewritten, err := p.rewriteFn(ctx, path, boundary, total)
	if err != nil {
		return result, fmt.Errorf("rewrite %s: %w", path, err)
	}
	result.Rewritten = rewritten

	return result, nil
}

func (p *Pipeline) segments(ctx context.Context, path, ext string) (time.Duration, []audio.Segment, error) {
	useWAV := p.opts.Provider == ProviderWAV || (p.opts.Provider == ProviderAuto && ext == ".wav")

	if useWAV {
		segments, total, err := p.scanFn(path)
		if err != nil {
			return 0, nil, fmt.Errorf("scan %s: %w", path, err)
		}
		return total, segments, nil
	}

	info, err := p.probeFn(ctx, path)
	if err != nil {
		return 0, nil, fmt.Errorf("probe %s: %w", path, err)
	}

	segments, err := p.detectFn(ctx, path, info.Duration)
	if err != nil {
		return 0, nil, fmt.Errorf("detect silence in %s: %w", path, err)
	}

	return info.Duration, segments, nil
}
