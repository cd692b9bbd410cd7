package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"
)

var ErrNoDuration = errors.New("no audio duration in probe output")

// ProbeInfo carries the stream facts the trim pipeline needs: total duration
// and the container/stream metadata tags that must survive a rewrite.
type ProbeInfo struct {
	Duration time.Duration
	Tags     map[string]string
}

type probeOutput struct {
	Format struct {
		Duration string            `json:"duration"`
		Tags     map[string]string `json:"tags"`
	} `json:"format"`
	Streams []struct {
		CodecType string            `json:"codec_type"`
		Duration  string            `json:"duration"`
		Tags      map[string]string `json:"tags"`
	} `json:"streams"`
}

// Probe reads duration and metadata tags from a media file with ffprobe.
// Duration comes from the container when present; some ffprobe builds only
// report it on the audio stream, so that is the fallback.
func (t *Tool) Probe(ctx context.Context, path string) (ProbeInfo, error) {
	args := []string{
		"-hide_banner",
		"-show_format",
		"-show_streams",
		"-select_streams", "a:0",
		"-print_format", "json",
		path,
	}

	stdout, stderr, err := t.run(ctx, t.FFprobePath, args...)
	if err != nil {
		return ProbeInfo{}, commandFailure(t.FFprobePath, args, stderr, err)
	}

	var out probeOutput
	if err := json.Unmarshal(stdout, &out); err != nil {
		return ProbeInfo{}, fmt.Errorf("parse ffprobe output for %s: %w", path, err)
	}

	info := ProbeInfo{Tags: map[string]string{}}
	for k, v := range out.Format.Tags {
		info.Tags[k] = v
	}
	for _, s := range out.Streams {
		if s.CodecType != "audio" {
			continue
		}
		for k, v := range s.Tags {
			if _, exists := info.Tags[k]; !exists {
				info.Tags[k] = v
			}
		}
	}

	if d, ok := parseSeconds(out.Format.Duration); ok {
		info.Duration = d
		return info, nil
	}

	for _, s := range out.Streams {
		if s.CodecType != "audio" {
			continue
		}
		if d, ok := parseSeconds(s.Duration); ok {
			info.Duration = d
			return info, nil
		}
	}

	t.Logger.Debug("probe found no duration", zap.String("path", path))
	return ProbeInfo{}, fmt.Errorf("%w: %s", ErrNoDuration, path)
}

func parseSeconds(raw string) (time.Duration, bool) {
	if raw == "" {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || seconds < 0 {
		return 0, false
	}
	return time.Duration(seconds * float64(time.Second)), true
}
