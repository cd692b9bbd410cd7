package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mfriedel/voxtrim/internal/audio"
	"github.com/mfriedel/voxtrim/internal/ffmpeg"
	"github.com/mfriedel/voxtrim/internal/trim"
	"github.com/spf13/cobra"
)

func ffmpegDetectOptions(opts trim.Options) ffmpeg.DetectOptions {
	return ffmpeg.DetectOptions{ThresholdDB: opts.ThresholdDB, MinSilence: opts.MinSilence}
}

type inspectReport struct {
	Path     string
	Duration time.Duration
	Segments []audio.Segment
	Boundary time.Duration
}

func newInspectCmd(app *appState) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show silence segments and the trim boundary without touching the file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inspectFn := app.inspectFn
			if inspectFn == nil {
				inspectFn = app.inspect
			}

			report, err := inspectFn(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			printReport(cmd, report)
			return nil
		},
	}
}

func (a *appState) inspect(ctx context.Context, path string) (inspectReport, error) {
	opts, err := a.trimOptions()
	if err != nil {
		return inspectReport{}, err
	}

	var (
		total    time.Duration
		segments []audio.Segment
	)

	useWAV := opts.Provider == trim.ProviderWAV ||
		(opts.Provider == trim.ProviderAuto && strings.EqualFold(filepath.Ext(path), ".wav"))

	if useWAV {
		segments, total, err = audio.ScanWAV(path, audio.ScanOptions{
			ThresholdDBFS: opts.ThresholdDB,
			MinSilence:    opts.MinSilence,
		})
		if err != nil {
			return inspectReport{}, err
		}
	} else {
		tool, err := a.resolveTool()
		if err != nil {
			return inspectReport{}, err
		}

		stop := startSpinner(a.progressEnabled(), "Analyzing")
		info, err := tool.Probe(ctx, path)
		if err != nil {
			stop()
			return inspectReport{}, err
		}
		total = info.Duration

		segments, err = tool.DetectSilence(ctx, path, total, ffmpegDetectOptions(opts))
		stop()
		if err != nil {
			return inspectReport{}, err
		}
	}

	boundary, err := audio.ResolveBoundary(total, segments)
	if err != nil {
		return inspectReport{}, err
	}

	return inspectReport{Path: path, Duration: total, Segments: segments, Boundary: boundary}, nil
}

func printReport(cmd *cobra.Command, report inspectReport) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", report.Path)
	fmt.Fprintf(out, "duration: %s\n", humanTime(report.Duration))

	if len(report.Segments) == 0 {
		fmt.Fprintln(out, "no silence segments")
	} else {
		fmt.Fprintf(out, "silence segments (%d):\n", len(report.Segments))
		for _, s := range report.Segments {
			fmt.Fprintf(out, "  %s - %s (%s)\n", humanTime(s.Start), humanTime(s.End), s.Duration())
		}
	}

	if report.Boundary == report.Duration {
		fmt.Fprintln(out, "boundary: end of stream, nothing to trim")
		return
	}
	fmt.Fprintf(out, "boundary: %s (would trim %s)\n", humanTime(report.Boundary), report.Duration-report.Boundary)
}
