package trim

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ParametersFile is the sidecar written next to batch-processed directories
// so a run can be reproduced later.
const ParametersFile = "trim_parameters.yaml"

type parameters struct {
	Provider           string           `yaml:"provider"`
	SilenceThresholdDB float64          `yaml:"silence_threshold_db"`
	MinSilence         string           `yaml:"min_silence"`
	Normalize          *normalizeParams `yaml:"normalize,omitempty"`
}

type normalizeParams struct {
	Channels   int `yaml:"channels"`
	SampleRate int `yaml:"sample_rate"`
	SampleBits int `yaml:"sample_size"`
}

// WriteParameters records the detection parameters of a run into dir.
func WriteParameters(dir string, opts Options) error {
	p := parameters{
		Provider:           string(opts.Provider),
		SilenceThresholdDB: opts.ThresholdDB,
		MinSilence:         opts.MinSilence.String(),
	}
	if opts.Normalize {
		p.Normalize = &normalizeParams{
			Channels:   opts.NormalizeOpts.Channels,
			SampleRate: opts.NormalizeOpts.SampleRate,
			SampleBits: opts.NormalizeOpts.SampleBits,
		}
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal trim parameters: %w", err)
	}

	path := filepath.Join(dir, ParametersFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}

	return nil
}
