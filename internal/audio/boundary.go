package audio

import "time"

// ResolveBoundary computes the timestamp at which trailing content should be
// cut. It walks the silence segments in reverse time order, shrinking the
// candidate end whenever the material after a silence segment is shorter than
// the silence itself; such a short tail is noise, not content. The scan stops
// at the first segment whose trailing gap is at least as long as the segment.
//
// The comparison is strictly less-than: a tail exactly as long as the silence
// before it is kept.
//
// An empty segment list resolves to total (no trim). The result is always in
// [0, total].
func ResolveBoundary(total time.Duration, segments []Segment) (time.Duration, error) {
	if err := ValidateSegments(total, segments); err != nil {
		return 0, err
	}

	computedEnd := total
	for i := len(segments) - 1; i >= 0; i-- {
		s := segments[i]
		gap := computedEnd - s.End
		if gap < s.Duration() {
			computedEnd = s.Start
			continue
		}
		break
	}

	return computedEnd, nil
}
