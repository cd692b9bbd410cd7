// Package config provides environment-backed defaults for the CLI flags.
package config

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/sethvargo/go-envconfig"
)

// Config holds the tunable defaults. Flags win over environment values;
// environment values win over the literals below. Detection thresholds shape
// the silence-segment providers only, never the boundary resolver.
type Config struct {
	FFmpegPath  string `env:"VOXTRIM_FFMPEG_PATH, default=ffmpeg"`
	FFprobePath string `env:"VOXTRIM_FFPROBE_PATH, default=ffprobe"`

	SilenceThresholdDB float64       `env:"VOXTRIM_SILENCE_THRESHOLD_DB, default=-50" validate:"lt=0"`
	MinSilence         time.Duration `env:"VOXTRIM_MIN_SILENCE, default=500ms" validate:"gt=0"`

	Workers int `env:"VOXTRIM_WORKERS, default=4" validate:"gte=1,lte=64"`

	Channels   int `env:"VOXTRIM_CHANNELS, default=1" validate:"gte=1,lte=8"`
	SampleRate int `env:"VOXTRIM_SAMPLE_RATE, default=44100" validate:"gte=8000,lte=192000"`
	SampleBits int `env:"VOXTRIM_SAMPLE_BITS, default=16" validate:"oneof=8 16 24 32"`
}

// Load reads configuration from the environment and validates it.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate configuration: %w", err)
	}

	return cfg, nil
}
