package plan

import "errors"

// ErrInvalidArgument indicates a size, duration, bitrate or part count that
// cannot be planned with (non-positive or unparsable).
var ErrInvalidArgument = errors.New("invalid argument")

// ErrInvalidPlan indicates the limits are too tight to produce any window,
// or that a plan does not partition its source.
var ErrInvalidPlan = errors.New("invalid plan")

// ErrPartTooLarge indicates an equal split would produce a part that
// violates the size or duration limit.
var ErrPartTooLarge = errors.New("part exceeds chunk limits")
