package plan

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// Size is a byte count.
type Size int64

// Decimal size units.
const (
	Byte     Size = 1
	Kilobyte Size = 1000 * Byte
	Megabyte Size = 1000 * Kilobyte
)

// String returns the size in SI units, e.g. "25 MB".
func (s Size) String() string {
	if s < 0 {
		return fmt.Sprintf("%d B", int64(s))
	}
	return humanize.Bytes(uint64(s))
}

// sizeUnits maps accepted unit suffixes to their byte multiplier.
// An empty suffix means megabytes.
var sizeUnits = map[string]Size{
	"":   Megabyte,
	"B":  Byte,
	"KB": Kilobyte,
	"MB": Megabyte,
}

// sizePattern matches a decimal number followed by an optional unit.
var sizePattern = regexp.MustCompile(`^([+-]?(?:\d+(?:\.\d*)?|\.\d+))\s*([A-Za-z]*)$`)

// ParseSize parses a human size such as "25MB", "500 kb", "1000000B" or "25".
// Units are decimal and case-insensitive; a bare number is read as megabytes.
// Fractional values are evaluated exactly and floored to whole bytes.
func ParseSize(text string) (Size, error) {
	s := strings.TrimSpace(text)
	m := sizePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Errorf("%w: cannot parse size %q (expected e.g. 25MB, 500KB, 1000000B)", ErrInvalidArgument, text)
	}

	unit, ok := sizeUnits[strings.ToUpper(m[2])]
	if !ok {
		return 0, fmt.Errorf("%w: unknown size unit %q in %q (supported: B, KB, MB)", ErrInvalidArgument, m[2], text)
	}

	number, err := decimal.NewFromString(m[1])
	if err != nil {
		return 0, fmt.Errorf("%w: cannot parse size %q: %v", ErrInvalidArgument, text, err)
	}

	bytes := number.Mul(decimal.NewFromInt(int64(unit))).Floor()
	if !bytes.IsPositive() {
		return 0, fmt.Errorf("%w: size %q must be greater than zero", ErrInvalidArgument, text)
	}
	if bytes.GreaterThan(decimal.NewFromInt(math.MaxInt64)) {
		return 0, fmt.Errorf("%w: size %q is too large", ErrInvalidArgument, text)
	}

	return Size(bytes.IntPart()), nil
}

// nanosPerSecond as a decimal, for exact conversions.
var nanosPerSecond = decimal.NewFromInt(int64(time.Second))

// BytesForDuration returns how many bytes d of audio occupies at bitrate
// bits per second: floor(seconds * bitrate / 8). Non-positive inputs yield 0.
func BytesForDuration(d time.Duration, bitrate int64) Size {
	if d <= 0 || bitrate <= 0 {
		return 0
	}
	bits := decimal.NewFromInt(int64(d)).Mul(decimal.NewFromInt(bitrate))
	bytes, _ := bits.QuoRem(nanosPerSecond.Mul(decimal.NewFromInt(8)), 0)
	return Size(bytes.IntPart())
}

// DurationForBytes returns the whole seconds of audio that fit in b bytes at
// bitrate bits per second: floor(b * 8 / bitrate). Flooring guarantees that a
// window of the returned length never exceeds b once cut.
func DurationForBytes(b Size, bitrate int64) time.Duration {
	if b <= 0 || bitrate <= 0 {
		return 0
	}
	seconds, _ := decimal.NewFromInt(int64(b)).Mul(decimal.NewFromInt(8)).QuoRem(decimal.NewFromInt(bitrate), 0)
	if seconds.GreaterThan(decimal.NewFromInt(math.MaxInt64 / int64(time.Second))) {
		return time.Duration(math.MaxInt64).Truncate(time.Second)
	}
	return time.Duration(seconds.IntPart()) * time.Second
}

// Seconds converts a decimal number of seconds to a Duration, truncated to
// the nanosecond.
func Seconds(s decimal.Decimal) time.Duration {
	return time.Duration(s.Mul(nanosPerSecond).IntPart())
}
