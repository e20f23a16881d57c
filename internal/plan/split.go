package plan

import (
	"fmt"
	"time"

	"github.com/alnah/audio-splitter/internal/format"
)

// PlanEqualParts divides an already compliant chunk of length total into
// parts windows of floor(total/parts) whole seconds; the last window absorbs
// the remainder.
//
// Every part must satisfy limits at bitrate, otherwise ErrPartTooLarge is
// returned. Splitting is not a substitute for PlanChunks on an oversized
// source.
func PlanEqualParts(total time.Duration, bitrate int64, parts int, limits Limits) (Plan, error) {
	if err := validateSource(total, bitrate); err != nil {
		return nil, err
	}
	if err := limits.validate(); err != nil {
		return nil, err
	}
	if parts < 1 {
		return nil, fmt.Errorf("%w: parts must be at least 1, got %d", ErrInvalidArgument, parts)
	}

	partDuration := (total / time.Duration(parts)).Truncate(time.Second)
	if partDuration <= 0 {
		return nil, fmt.Errorf("%w: %d parts of %s would be shorter than one second each",
			ErrInvalidArgument, parts, format.Seconds(total))
	}

	p := make(Plan, parts)
	for i := range parts {
		start := time.Duration(i) * partDuration
		end := start + partDuration
		if i == parts-1 {
			end = total
		}
		p[i] = Window{Index: i, Start: start, End: end}
	}

	for _, w := range p {
		if !limits.Fits(w.Duration(), bitrate) {
			return nil, fmt.Errorf("%w: part %d is %s (%s), limits are %s",
				ErrPartTooLarge, w.Index+1, format.Seconds(w.Duration()), BytesForDuration(w.Duration(), bitrate), limits)
		}
	}

	return p, nil
}
