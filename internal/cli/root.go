// Package cli wires the voxtrim command surface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mfriedel/voxtrim/internal/config"
	"github.com/mfriedel/voxtrim/internal/logging"
	"github.com/mfriedel/voxtrim/internal/trim"
	"github.com/mfriedel/voxtrim/internal/version"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/spf13/cobra"
)

type appState struct {
	verbose    bool
	jsonLogs   bool
	noProgress bool

	ffmpegPath  string
	ffprobePath string

	provider    string
	thresholdDB float64
	minSilence  time.Duration
	workers     int
	dryRun      bool

	normalize  bool
	channels   int
	sampleRate int
	sampleBits int

	doTranscribe  bool
	transcribeCmd string
	model         string
	language      string

	logger *zap.Logger
	out    io.Writer
	envErr error

	runBatchFn   func(ctx context.Context, files []string) (trim.Summary, error)
	inspectFn    func(ctx context.Context, path string) (inspectReport, error)
	transcribeFn func(ctx context.Context, path string) error
}

func NewRootCmd() *cobra.Command {
	app := &appState{
		provider: string(trim.ProviderAuto),
		language: "auto",
		out:      os.Stdout,
	}

	cfg, err := config.Load(context.Background())
	if err != nil {
		app.envErr = err
		cfg = config.Config{}
	}
	app.ffmpegPath = cfg.FFmpegPath
	app.ffprobePath = cfg.FFprobePath
	app.thresholdDB = cfg.SilenceThresholdDB
	app.minSilence = cfg.MinSilence
	app.workers = cfg.Workers
	app.channels = cfg.Channels
	app.sampleRate = cfg.SampleRate
	app.sampleBits = cfg.SampleBits

	cmd := &cobra.Command{
		Use:           "voxtrim <path>...",
		Short:         "Trim trailing silence from recorded media files",
		Long: "Voxtrim cuts trailing silence from recorded media files in place, keeping\n" +
			"metadata tags intact. Files and directories given as arguments are processed\n" +
			"with a bounded worker pool; directories are walked recursively.",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if app.envErr != nil {
				return app.envErr
			}
			logger, err := logging.New(logging.Options{Verbose: app.verbose, JSON: app.jsonLogs})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			app.logger = logger
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runTrim(cmd.Context(), args)
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindToolFlags(cmd, app)
	bindDetectionFlags(cmd, app)
	bindNormalizeFlags(cmd, app)
	bindTranscribeFlags(cmd, app)
	cmd.Flags().IntVar(&app.workers, "workers", app.workers, "Number of files processed concurrently")
	cmd.Flags().BoolVar(&app.dryRun, "dry-run", false, "Resolve trim boundaries without rewriting any file")

	cmd.AddCommand(newInspectCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func bindLoggingFlags(cmd *cobra.Command, app *appState) {
	cmd.PersistentFlags().BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	cmd.PersistentFlags().BoolVar(&app.jsonLogs, "json", app.jsonLogs, "Enable JSON logging")
}

func bindProgressFlag(cmd *cobra.Command, app *appState) {
	cmd.PersistentFlags().BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
}

func bindToolFlags(cmd *cobra.Command, app *appState) {
	cmd.PersistentFlags().StringVar(&app.ffmpegPath, "ffmpeg", app.ffmpegPath, "Path to the ffmpeg binary")
	cmd.PersistentFlags().StringVar(&app.ffprobePath, "ffprobe", app.ffprobePath, "Path to the ffprobe binary")
}

func bindDetectionFlags(cmd *cobra.Command, app *appState) {
	cmd.PersistentFlags().StringVar(&app.provider, "provider", app.provider, "Silence segment provider: auto|wav|ffmpeg")
	cmd.PersistentFlags().Float64Var(&app.thresholdDB, "silence-threshold-db", app.thresholdDB, "Silence threshold in dB (negative)")
	cmd.PersistentFlags().DurationVar(&app.minSilence, "min-silence", app.minSilence, "Shortest silence interval worth reporting, e.g. 500ms")
}

func bindNormalizeFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.normalize, "normalize", false, "Convert sources to PCM WAV siblings before trimming")
	cmd.Flags().IntVar(&app.channels, "channels", app.channels, "Audio channels for normalized output")
	cmd.Flags().IntVar(&app.sampleRate, "sample-rate", app.sampleRate, "Sample rate for normalized output")
	cmd.Flags().IntVar(&app.sampleBits, "sample-size", app.sampleBits, "Bits per sample for normalized output")
}

func bindTranscribeFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.doTranscribe, "transcribe", false, "Hand trimmed files to an external transcription command")
	cmd.Flags().StringVar(&app.transcribeCmd, "transcribe-cmd", app.transcribeCmd, "External transcription command")
	cmd.Flags().StringVar(&app.model, "model", app.model, "Model name forwarded to the transcription command")
	cmd.Flags().StringVar(&app.language, "language", app.language, "Language code (auto|en|de|...) forwarded to the transcription command")
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (a *appState) outWriter() io.Writer {
	if a.out == nil {
		return os.Stdout
	}
	return a.out
}

func (a *appState) trimOptions() (trim.Options, error) {
	provider := trim.Provider(a.provider)
	switch provider {
	case trim.ProviderAuto, trim.ProviderWAV, trim.ProviderFFmpeg:
	default:
		return trim.Options{}, fmt.Errorf("unknown provider %q (expected auto, wav or ffmpeg)", a.provider)
	}

	opts := trim.Options{
		Provider:    provider,
		ThresholdDB: a.thresholdDB,
		MinSilence:  a.minSilence,
		Normalize:   a.normalize,
		DryRun:      a.dryRun,
	}
	opts.NormalizeOpts.Channels = a.channels
	opts.NormalizeOpts.SampleRate = a.sampleRate
	opts.NormalizeOpts.SampleBits = a.sampleBits

	return opts, nil
}
