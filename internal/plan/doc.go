// Package plan computes where a recording is cut.
//
// Everything here is pure: callers supply the source duration and average
// bitrate (see audio.Prober) and receive an ordered, gapless Plan of time
// windows. Cutting the windows out of a file is the job of audio.Cutter.
//
// Rounding policy:
//   - Sizes are decimal (1 MB = 1,000,000 bytes), matching upload limits.
//   - Byte/duration conversions floor, with 8 bits per byte.
//   - The chunk planner budgets 98.5% of the byte limit per window to leave
//     room for container overhead. The whole-file fit test uses the raw limit.
package plan
