package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"time"
)

var (
	ErrUnsupportedWAV = errors.New("unsupported wav format")
	ErrInvalidWAV     = errors.New("invalid wav file")
)

// ScanOptions configures the native WAV silence scan.
type ScanOptions struct {
	// ThresholdDBFS is the peak amplitude below which a frame counts as
	// silent, in dBFS (negative).
	ThresholdDBFS float64

	// MinSilence drops silent runs shorter than this duration.
	MinSilence time.Duration
}

// ScanWAV reads a PCM WAV file and returns its silence segments in time
// order, together with the stream duration derived from the sample data.
// It serves as an offline segment provider that needs no external tools.
func ScanWAV(path string, opts ScanOptions) ([]Segment, time.Duration, error) {
	info, err := readWAV(path)
	if err != nil {
		return nil, 0, err
	}

	thresholdAmp := dbfsToAmplitude(opts.ThresholdDBFS)
	frameSize := int(info.bitsPerSample/8) * int(info.channels)
	frames := len(info.data) / frameSize
	total := frameTime(frames, info.sampleRate)

	var segments []Segment
	silentFrom := -1

	for f := 0; f < frames; f++ {
		peak, err := framePeak(info, f, frameSize)
		if err != nil {
			return nil, 0, err
		}

		if peak <= thresholdAmp {
			if silentFrom < 0 {
				silentFrom = f
			}
			continue
		}

		if silentFrom >= 0 {
			segments = appendRun(segments, silentFrom, f, info.sampleRate, opts.MinSilence)
			silentFrom = -1
		}
	}

	if silentFrom >= 0 {
		segments = appendRun(segments, silentFrom, frames, info.sampleRate, opts.MinSilence)
	}

	return segments, total, nil
}

func appendRun(segments []Segment, fromFrame, toFrame int, sampleRate uint32, minSilence time.Duration) []Segment {
	s := Segment{
		Start: frameTime(fromFrame, sampleRate),
		End:   frameTime(toFrame, sampleRate),
	}
	if s.Duration() < minSilence {
		return segments
	}
	return append(segments, s)
}

func frameTime(frame int, sampleRate uint32) time.Duration {
	return time.Duration(frame) * time.Second / time.Duration(sampleRate)
}

func framePeak(info wavInfo, frame, frameSize int) (float64, error) {
	bytesPerSample := int(info.bitsPerSample / 8)
	offset := frame * frameSize

	var peak float64
	for ch := 0; ch < int(info.channels); ch++ {
		start := offset + ch*bytesPerSample
		value, err := decodeSample(info.data[start:start+bytesPerSample], info.audioFormat, info.bitsPerSample)
		if err != nil {
			return 0, err
		}
		if abs := math.Abs(value); abs > peak {
			peak = abs
		}
	}

	return peak, nil
}

type wavInfo struct {
	audioFormat   uint16
	channels      uint16
	sampleRate    uint32
	bitsPerSample uint16
	data          []byte
}

func readWAV(path string) (wavInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return wavInfo{}, fmt.Errorf("open wav: %w", err)
	}
	defer f.Close()

	header := make([]byte, 12)
	if _, err := io.ReadFull(f, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return wavInfo{}, fmt.Errorf("%w: %v", ErrInvalidWAV, err)
		}
		return wavInfo{}, fmt.Errorf("read wav header: %w", err)
	}

	if string(header[:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return wavInfo{}, ErrInvalidWAV
	}

	var (
		info       wavInfo
		dataOffset int64
		dataSize   uint32
		hasFmt     bool
		hasData    bool
	)

	for {
		chunkHeader := make([]byte, 8)
		if _, err := io.ReadFull(f, chunkHeader); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return wavInfo{}, fmt.Errorf("read wav chunk header: %w", err)
		}

		chunkID := string(chunkHeader[:4])
		chunkSize := binary.LittleEndian.Uint32(chunkHeader[4:8])

		chunkStart, err := f.Seek(0, io.SeekCurrent)
		if err != nil {
			return wavInfo{}, fmt.Errorf("seek wav chunk start: %w", err)
		}

		skip := int64(chunkSize)
		if chunkSize%2 != 0 {
			skip++
		}

		switch chunkID {
		case "fmt ":
			if chunkSize < 16 {
				return wavInfo{}, ErrInvalidWAV
			}

			buf := make([]byte, chunkSize)
			if _, err := io.ReadFull(f, buf); err != nil {
				return wavInfo{}, fmt.Errorf("read wav fmt chunk: %w", err)
			}

			info.audioFormat = binary.LittleEndian.Uint16(buf[0:2])
			info.channels = binary.LittleEndian.Uint16(buf[2:4])
			info.sampleRate = binary.LittleEndian.Uint32(buf[4:8])
			info.bitsPerSample = binary.LittleEndian.Uint16(buf[14:16])
			hasFmt = true

			if chunkSize%2 != 0 {
				if _, err := f.Seek(1, io.SeekCurrent); err != nil {
					return wavInfo{}, fmt.Errorf("seek wav fmt padding: %w", err)
				}
			}
		case "data":
			dataOffset = chunkStart
			dataSize = chunkSize
			hasData = true
			if _, err := f.Seek(skip, io.SeekCurrent); err != nil {
				return wavInfo{}, fmt.Errorf("seek wav data chunk: %w", err)
			}
		default:
			if _, err := f.Seek(skip, io.SeekCurrent); err != nil {
				return wavInfo{}, fmt.Errorf("seek wav chunk %s: %w", chunkID, err)
			}
		}
	}

	if !hasFmt || !hasData {
		return wavInfo{}, ErrInvalidWAV
	}

	if info.channels == 0 || info.sampleRate == 0 {
		return wavInfo{}, ErrInvalidWAV
	}

	if err := validateFormat(info.audioFormat, info.bitsPerSample); err != nil {
		return wavInfo{}, err
	}

	if _, err := f.Seek(dataOffset, io.SeekStart); err != nil {
		return wavInfo{}, fmt.Errorf("seek wav data offset: %w", err)
	}

	info.data = make([]byte, dataSize)
	if _, err := io.ReadFull(f, info.data); err != nil {
		return wavInfo{}, fmt.Errorf("read wav data: %w", err)
	}

	return info, nil
}

func validateFormat(audioFormat, bitsPerSample uint16) error {
	if audioFormat != 1 && audioFormat != 3 {
		return ErrUnsupportedWAV
	}

	if audioFormat == 1 {
		switch bitsPerSample {
		case 8, 16, 24, 32:
			return nil
		default:
			return ErrUnsupportedWAV
		}
	}

	switch bitsPerSample {
	case 32, 64:
		return nil
	default:
		return ErrUnsupportedWAV
	}
}

func decodeSample(sample []byte, audioFormat, bitsPerSample uint16) (float64, error) {
	if audioFormat == 3 {
		switch bitsPerSample {
		case 32:
			bits := binary.LittleEndian.Uint32(sample)
			return float64(math.Float32frombits(bits)), nil
		case 64:
			bits := binary.LittleEndian.Uint64(sample)
			return math.Float64frombits(bits), nil
		default:
			return 0, ErrUnsupportedWAV
		}
	}

	switch bitsPerSample {
	case 8:
		u := float64(sample[0])
		return (u - 128.0) / 128.0, nil
	case 16:
		v := int16(binary.LittleEndian.Uint16(sample))
		return float64(v) / 32768.0, nil
	case 24:
		v := int32(sample[0]) | int32(sample[1])<<8 | int32(sample[2])<<16
		if v&0x800000 != 0 {
			v |= ^0xFFFFFF
		}
		return float64(v) / 8388608.0, nil
	case 32:
		v := int32(binary.LittleEndian.Uint32(sample))
		return float64(v) / 2147483648.0, nil
	default:
		return 0, ErrUnsupportedWAV
	}
}

func dbfsToAmplitude(dbfs float64) float64 {
	return math.Pow(10, dbfs/20.0)
}
