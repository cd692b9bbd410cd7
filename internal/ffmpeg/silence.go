package ffmpeg

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mfriedel/voxtrim/internal/audio"
	"go.uber.org/zap"
)

// DetectOptions shapes the silencedetect pass. The thresholds belong to the
// provider, not the boundary resolver.
type DetectOptions struct {
	// ThresholdDB is the noise floor in dB below which audio counts as
	// silence (negative).
	ThresholdDB float64

	// MinSilence is the shortest interval silencedetect will report.
	MinSilence time.Duration
}

var (
	silenceStartRe = regexp.MustCompile(`silence_start:\s*(-?[\d.]+)`)
	silenceEndRe   = regexp.MustCompile(`silence_end:\s*(-?[\d.]+)`)
)

// DetectSilence runs ffmpeg's silencedetect filter over the file and returns
// the silence segments in time order, clamped to total. silencedetect leaves
// a final silence_start unmatched when silence runs to end of stream; that
// interval is closed at total, since the trailing segment is the one this
// tool exists for.
func (t *Tool) DetectSilence(ctx context.Context, path string, total time.Duration, opts DetectOptions) ([]audio.Segment, error) {
	filter := fmt.Sprintf("silencedetect=noise=%gdB:d=%g", opts.ThresholdDB, opts.MinSilence.Seconds())
	args := []string{
		"-hide_banner",
		"-nostdin",
		"-i", path,
		"-af", filter,
		"-f", "null",
		"-",
	}

	// silencedetect writes its findings to stderr; ffmpeg exit status is
	// still meaningful for unreadable or unsupported input.
	_, stderr, err := t.run(ctx, t.FFmpegPath, args...)
	if err != nil {
		return nil, commandFailure(t.FFmpegPath, args, stderr, err)
	}

	segments := parseSilence(string(stderr), total)
	t.Logger.Debug("silence detection finished",
		zap.String("path", path),
		zap.Int("segments", len(segments)),
		zap.Float64("threshold_db", opts.ThresholdDB),
		zap.Duration("min_silence", opts.MinSilence),
	)

	return segments, nil
}

func parseSilence(output string, total time.Duration) []audio.Segment {
	var segments []audio.Segment
	var currentStart time.Duration
	hasStart := false

	for _, line := range strings.Split(output, "\n") {
		if m := silenceStartRe.FindStringSubmatch(line); len(m) > 1 {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				currentStart = secondsToDuration(v)
				hasStart = true
			}
			continue
		}

		if m := silenceEndRe.FindStringSubmatch(line); len(m) > 1 && hasStart {
			if v, err := strconv.ParseFloat(m[1], 64); err == nil {
				segments = appendClamped(segments, currentStart, secondsToDuration(v), total)
				hasStart = false
			}
		}
	}

	if hasStart {
		segments = appendClamped(segments, currentStart, total, total)
	}

	return segments
}

// appendClamped bounds a detected interval to [0, total]. silencedetect
// timestamps round independently of ffprobe's duration, so an end a few
// milliseconds past total is measurement skew, not a contract violation.
func appendClamped(segments []audio.Segment, start, end, total time.Duration) []audio.Segment {
	if start < 0 {
		start = 0
	}
	if end > total {
		end = total
	}
	if end < start {
		return segments
	}
	return append(segments, audio.Segment{Start: start, End: end})
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
