package ffmpeg

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// NormalizeOpts describes the uniform PCM WAV format files are converted to
// before trimming.
type NormalizeOpts struct {
	Channels   int
	SampleRate int
	SampleBits int
}

func DefaultNormalizeOpts() NormalizeOpts {
	return NormalizeOpts{
		Channels:   1,
		SampleRate: 44100,
		SampleBits: 16,
	}
}

func (o NormalizeOpts) codec() (string, error) {
	switch o.SampleBits {
	case 8, 16, 24, 32:
		return fmt.Sprintf("pcm_s%dle", o.SampleBits), nil
	default:
		return "", fmt.Errorf("unsupported sample size %d bits", o.SampleBits)
	}
}

// Convert transcodes src into dst as PCM WAV with the requested channel
// count, sample rate and sample size, mapping metadata tags through. dst is
// staged next to its final location and renamed into place on success.
func (t *Tool) Convert(ctx context.Context, src, dst string, opts NormalizeOpts) error {
	codec, err := opts.codec()
	if err != nil {
		return err
	}

	tmpPath, err := stagingPath(dst)
	if err != nil {
		return err
	}

	args := []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", src,
		"-vn",
		"-c:a", codec,
		"-ac", fmt.Sprintf("%d", opts.Channels),
		"-ar", fmt.Sprintf("%d", opts.SampleRate),
		"-map_metadata", "0",
		"-f", "wav",
		tmpPath,
	}

	_, stderr, err := t.run(ctx, t.FFmpegPath, args...)
	if err != nil {
		_ = os.Remove(tmpPath)
		return commandFailure(t.FFmpegPath, args, stderr, err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replace %s: %w", dst, err)
	}

	t.Logger.Debug("converted file",
		zap.String("src", src),
		zap.String("dst", dst),
		zap.String("codec", codec),
		zap.Int("channels", opts.Channels),
		zap.Int("sample_rate", opts.SampleRate),
	)

	return nil
}
