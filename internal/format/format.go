package format

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// Duration formats a duration as HH:MM:SS or MM:SS.
func Duration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// Seconds formats a duration as seconds with millisecond precision, e.g. "864.000s".
func Seconds(d time.Duration) string {
	return fmt.Sprintf("%.3fs", d.Seconds())
}

// Timestamp formats a duration for FFmpeg -ss/-t arguments, e.g. "00:14:24.000".
func Timestamp(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := d.Seconds() - float64(h*3600+m*60)
	return fmt.Sprintf("%02d:%02d:%06.3f", h, m, s)
}

// Size formats a size in bytes using decimal SI units, e.g. "25 MB".
func Size(bytes int64) string {
	if bytes < 0 {
		return fmt.Sprintf("%d B", bytes)
	}
	return humanize.Bytes(uint64(bytes))
}

// Bitrate formats bits per second the way FFmpeg reports it, e.g. "228 kb/s".
func Bitrate(bps int64) string {
	if bps < 1000 {
		return fmt.Sprintf("%d b/s", bps)
	}
	return fmt.Sprintf("%s kb/s", humanize.Comma(bps/1000))
}
