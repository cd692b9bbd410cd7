// Package audio holds the silence-segment model and the boundary resolver
// that decides where trailing silence should be cut.
package audio

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidSegment = errors.New("invalid silence segment")

// Segment is a detected interval of near-silent audio, measured relative to
// stream start. Providers emit segments in time order, non-overlapping.
// Zero-duration segments (Start == End) are permitted.
type Segment struct {
	Start time.Duration
	End   time.Duration
}

func (s Segment) Duration() time.Duration {
	return s.End - s.Start
}

func (s Segment) String() string {
	return fmt.Sprintf("[%s, %s]", s.Start, s.End)
}

// Stream is the immutable resolver input read once from a source file.
type Stream struct {
	Duration time.Duration
	Segments []Segment
	Tags     map[string]string
}

// ValidateSegments checks the provider contract: segments are ordered,
// non-overlapping, and contained in [0, total]. The resolver never re-sorts;
// a violation here is a provider bug, not something to repair.
func ValidateSegments(total time.Duration, segments []Segment) error {
	if total < 0 {
		return fmt.Errorf("%w: negative stream duration %s", ErrInvalidSegment, total)
	}

	var prevEnd time.Duration
	for i, s := range segments {
		switch {
		case s.Start < 0:
			return fmt.Errorf("%w: segment %d %s starts before stream start", ErrInvalidSegment, i, s)
		case s.End < s.Start:
			return fmt.Errorf("%w: segment %d %s ends before it starts", ErrInvalidSegment, i, s)
		case s.End > total:
			return fmt.Errorf("%w: segment %d %s ends past stream duration %s", ErrInvalidSegment, i, s, total)
		case s.Start < prevEnd:
			return fmt.Errorf("%w: segment %d %s overlaps or precedes the previous segment", ErrInvalidSegment, i, s)
		}
		prevEnd = s.End
	}

	return nil
}
