package plan

import (
	"fmt"
	"time"
)

// PlanChunks partitions a recording of total length at bitrate bits per
// second into windows that each satisfy limits.
//
// A source that already fits both limits yields a single window spanning the
// whole file. Otherwise windows advance by the tighter of the byte budget and
// MaxDuration, and the last window ends exactly at total.
func PlanChunks(total time.Duration, bitrate int64, limits Limits) (Plan, error) {
	if err := validateSource(total, bitrate); err != nil {
		return nil, err
	}
	if err := limits.validate(); err != nil {
		return nil, err
	}

	if limits.Fits(total, bitrate) {
		return Plan{{Index: 0, Start: 0, End: total}}, nil
	}

	step := min(DurationForBytes(limits.budget(), bitrate), limits.MaxDuration)
	if step <= 0 {
		return nil, fmt.Errorf("%w: at %d bits/s not even one second fits in %s; use a larger --max-size or a lower-bitrate source",
			ErrInvalidPlan, bitrate, limits.MaxBytes)
	}

	p := make(Plan, 0, int((total+step-1)/step))
	for start := time.Duration(0); start < total; {
		end := min(start+step, total)
		if rest := total - end; rest > 0 && rest < minTail && limits.Fits(total-start, bitrate) {
			end = total
		}
		p = append(p, Window{Index: len(p), Start: start, End: end})
		start = end
	}

	return p, nil
}
