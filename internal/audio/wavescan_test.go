package audio

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestScanWAVFindsTrailingSilence(t *testing.T) {
	t.Parallel()

	const rate = 16000
	samples := make([]int16, 4*rate)
	fillTone(samples[:2*rate])

	path := filepath.Join(t.TempDir(), "tail.wav")
	require.NoError(t, os.WriteFile(path, makePCM16WAV(samples, rate, 1), 0o644))

	segments, total, err := ScanWAV(path, ScanOptions{ThresholdDBFS: -50, MinSilence: 200 * time.Millisecond})
	require.NoError(t, err)
	require.Equal(t, 4*time.Second, total)
	require.Len(t, segments, 1)
	require.InDelta(t, (2 * time.Second).Seconds(), segments[0].Start.Seconds(), 0.05)
	require.Equal(t, total, segments[0].End)
}

func TestScanWAVFindsInteriorSilence(t *testing.T) {
	t.Parallel()

	const rate = 16000
	samples := make([]int16, 3*rate)
	fillTone(samples[:rate])
	fillTone(samples[2*rate:])

	path := filepath.Join(t.TempDir(), "gap.wav")
	require.NoError(t, os.WriteFile(path, makePCM16WAV(samples, rate, 1), 0o644))

	segments, total, err := ScanWAV(path, ScanOptions{ThresholdDBFS: -50, MinSilence: 200 * time.Millisecond})
	require.NoError(t, err)
	require.Equal(t, 3*time.Second, total)
	require.Len(t, segments, 1)
	require.InDelta(t, (1 * time.Second).Seconds(), segments[0].Start.Seconds(), 0.05)
	require.InDelta(t, (2 * time.Second).Seconds(), segments[0].End.Seconds(), 0.05)
}

func TestScanWAVDropsShortRuns(t *testing.T) {
	t.Parallel()

	const rate = 16000
	samples := make([]int16, 2*rate)
	fillTone(samples[:rate-rate/10])
	fillTone(samples[rate:])

	path := filepath.Join(t.TempDir(), "blip.wav")
	require.NoError(t, os.WriteFile(path, makePCM16WAV(samples, rate, 1), 0o644))

	segments, _, err := ScanWAV(path, ScanOptions{ThresholdDBFS: -50, MinSilence: 500 * time.Millisecond})
	require.NoError(t, err)
	require.Empty(t, segments)
}

func TestScanWAVAllSilent(t *testing.T) {
	t.Parallel()

	const rate = 8000
	path := filepath.Join(t.TempDir(), "silent.wav")
	require.NoError(t, os.WriteFile(path, makePCM16WAV(make([]int16, 2*rate), rate, 1), 0o644))

	segments, total, err := ScanWAV(path, ScanOptions{ThresholdDBFS: -50, MinSilence: 100 * time.Millisecond})
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, total)
	require.Len(t, segments, 1)
	require.Equal(t, Segment{Start: 0, End: total}, segments[0])
}

func TestScanWAVSegmentsSatisfyResolverContract(t *testing.T) {
	t.Parallel()

	const rate = 16000
	samples := make([]int16, 5*rate)
	fillTone(samples[:rate])
	fillTone(samples[2*rate : 3*rate])

	path := filepath.Join(t.TempDir(), "mixed.wav")
	require.NoError(t, os.WriteFile(path, makePCM16WAV(samples, rate, 1), 0o644))

	segments, total, err := ScanWAV(path, ScanOptions{ThresholdDBFS: -50, MinSilence: 100 * time.Millisecond})
	require.NoError(t, err)
	require.NoError(t, ValidateSegments(total, segments))
}

func TestScanWAVStereoUsesFramePeak(t *testing.T) {
	t.Parallel()

	const rate = 8000
	// Left channel silent throughout, right channel carries a tone for the
	// first second. The frame peak must keep that second out of the run.
	frames := 2 * rate
	samples := make([]int16, 2*frames)
	for i := 0; i < rate; i++ {
		samples[2*i+1] = int16(0.25 * 32767 * math.Sin(2*math.Pi*440*float64(i)/float64(rate)))
	}

	path := filepath.Join(t.TempDir(), "stereo.wav")
	require.NoError(t, os.WriteFile(path, makePCM16WAV(samples, rate, 2), 0o644))

	segments, total, err := ScanWAV(path, ScanOptions{ThresholdDBFS: -50, MinSilence: 200 * time.Millisecond})
	require.NoError(t, err)
	require.Equal(t, 2*time.Second, total)
	require.Len(t, segments, 1)
	require.InDelta(t, (1 * time.Second).Seconds(), segments[0].Start.Seconds(), 0.05)
	require.Equal(t, total, segments[0].End)
}

func TestScanWAVInvalidFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "not-wav.wav")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	_, _, err := ScanWAV(path, ScanOptions{ThresholdDBFS: -50})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidWAV)
}

func fillTone(samples []int16) {
	for i := range samples {
		samples[i] = int16(0.25 * 32767 * math.Sin(2*math.Pi*440*float64(i)/16000.0))
	}
}

func makePCM16WAV(samples []int16, sampleRate int, channels int) []byte {
	bytesPerSample := 2
	dataSize := len(samples) * bytesPerSample
	fmtChunkSize := 16
	riffSize := 4 + (8 + fmtChunkSize) + (8 + dataSize)

	out := make([]byte, 12+8+fmtChunkSize+8+dataSize)
	off := 0

	copy(out[off:], []byte("RIFF"))
	off += 4
	binary.LittleEndian.PutUint32(out[off:], uint32(riffSize))
	off += 4
	copy(out[off:], []byte("WAVE"))
	off += 4

	copy(out[off:], []byte("fmt "))
	off += 4
	binary.LittleEndian.PutUint32(out[off:], uint32(fmtChunkSize))
	off += 4
	binary.LittleEndian.PutUint16(out[off:], 1)
	off += 2
	binary.LittleEndian.PutUint16(out[off:], uint16(channels))
	off += 2
	binary.LittleEndian.PutUint32(out[off:], uint32(sampleRate))
	off += 4
	binary.LittleEndian.PutUint32(out[off:], uint32(sampleRate*channels*bytesPerSample))
	off += 4
	binary.LittleEndian.PutUint16(out[off:], uint16(channels*bytesPerSample))
	off += 2
	binary.LittleEndian.PutUint16(out[off:], 16)
	off += 2

	copy(out[off:], []byte("data"))
	off += 4
	binary.LittleEndian.PutUint32(out[off:], uint32(dataSize))
	off += 4

	for _, s := range samples {
		binary.LittleEndian.PutUint16(out[off:], uint16(s))
		off += 2
	}

	return out
}
