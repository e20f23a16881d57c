package plan

import (
	"fmt"
	"time"

	"github.com/alnah/audio-splitter/internal/format"
)

// Default limits of the transcription service.
const (
	// DefaultMaxBytes is the upload ceiling for a single chunk.
	DefaultMaxBytes = 25 * Megabyte

	// TranscriptionMaxDuration is the longest chunk the service accepts.
	// It is a service constraint and not user configurable.
	TranscriptionMaxDuration = 1400 * time.Second
)

// budgetPermille is the share of MaxBytes a planned window may use.
// The remaining 1.5% absorbs container overhead and bitrate variance.
const budgetPermille = 985

// minTail is the shortest trailing window the chunk planner emits on its own.
// Shorter remainders are merged into the previous window when that window
// still fits the raw limits.
const minTail = time.Second

// Limits bounds every planned window.
type Limits struct {
	MaxBytes    Size
	MaxDuration time.Duration
}

// DefaultLimits returns the transcription service limits.
func DefaultLimits() Limits {
	return Limits{
		MaxBytes:    DefaultMaxBytes,
		MaxDuration: TranscriptionMaxDuration,
	}
}

// Fits reports whether d of audio at bitrate satisfies both limits.
func (l Limits) Fits(d time.Duration, bitrate int64) bool {
	return d <= l.MaxDuration && BytesForDuration(d, bitrate) <= l.MaxBytes
}

// String returns e.g. "25 MB / 1400s".
func (l Limits) String() string {
	return fmt.Sprintf("%s / %s", l.MaxBytes, format.Seconds(l.MaxDuration))
}

// budget returns the bytes a planned window may occupy.
func (l Limits) budget() Size {
	q, r := l.MaxBytes/1000, l.MaxBytes%1000
	return q*budgetPermille + r*budgetPermille/1000
}

func (l Limits) validate() error {
	if l.MaxBytes <= 0 {
		return fmt.Errorf("%w: max size must be greater than zero, got %d bytes", ErrInvalidArgument, l.MaxBytes)
	}
	if l.MaxDuration <= 0 {
		return fmt.Errorf("%w: max duration must be greater than zero, got %v", ErrInvalidArgument, l.MaxDuration)
	}
	return nil
}

// Window is one output slice of a source recording.
type Window struct {
	Index int           // Zero-based position in the plan.
	Start time.Duration // Inclusive offset in the source.
	End   time.Duration // Exclusive offset in the source.
}

// Duration returns the length of the window.
func (w Window) Duration() time.Duration {
	return w.End - w.Start
}

// String returns a human-readable representation for logging.
func (w Window) String() string {
	return fmt.Sprintf("window %d: %s-%s", w.Index, format.Duration(w.Start), format.Duration(w.End))
}

// Plan is an ordered sequence of windows partitioning one source.
type Plan []Window

// Total returns the end of the last window, or 0 for an empty plan.
func (p Plan) Total() time.Duration {
	if len(p) == 0 {
		return 0
	}
	return p[len(p)-1].End
}

// Whole reports whether the plan is a single window spanning the source,
// in which case the output is the source itself.
func (p Plan) Whole() bool {
	return len(p) == 1 && p[0].Start == 0
}

// Check verifies that p partitions [0, total): non-empty, starting at 0,
// ending at total, gapless, without overlap, and correctly indexed.
func (p Plan) Check(total time.Duration) error {
	if len(p) == 0 {
		return fmt.Errorf("%w: no windows", ErrInvalidPlan)
	}
	if p[0].Start != 0 {
		return fmt.Errorf("%w: first window starts at %v", ErrInvalidPlan, p[0].Start)
	}
	for i, w := range p {
		if w.Index != i {
			return fmt.Errorf("%w: window at position %d has index %d", ErrInvalidPlan, i, w.Index)
		}
		if w.Start >= w.End {
			return fmt.Errorf("%w: %s is empty", ErrInvalidPlan, w)
		}
		if i > 0 && p[i-1].End != w.Start {
			return fmt.Errorf("%w: gap or overlap between window %d and %d", ErrInvalidPlan, i-1, i)
		}
	}
	if end := p.Total(); end != total {
		return fmt.Errorf("%w: plan ends at %v, source ends at %v", ErrInvalidPlan, end, total)
	}
	return nil
}

func validateSource(total time.Duration, bitrate int64) error {
	if total <= 0 {
		return fmt.Errorf("%w: duration must be greater than zero, got %v", ErrInvalidArgument, total)
	}
	if bitrate <= 0 {
		return fmt.Errorf("%w: bitrate must be greater than zero, got %d", ErrInvalidArgument, bitrate)
	}
	return nil
}
