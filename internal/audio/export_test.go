package audio

// Export internal functions for testing.
// This file is only compiled during tests (suffix _test.go).

// ParseProbeJSON exports parseProbeJSON for testing.
var ParseProbeJSON = parseProbeJSON

// ParseFFmpegBanner exports parseFFmpegBanner for testing.
var ParseFFmpegBanner = parseFFmpegBanner

// ParseTimeComponents exports parseTimeComponents for testing.
var ParseTimeComponents = parseTimeComponents

// ChannelCount exports channelCount for testing.
var ChannelCount = channelCount

// BitrateFromSize exports bitrateFromSize for testing.
var BitrateFromSize = bitrateFromSize

// CutArgs exports cutArgs for testing.
var CutArgs = cutArgs

// FFprobeArgs exports ffprobeArgs for testing.
var FFprobeArgs = ffprobeArgs

// --- Dependency injection exports ---

// CommandRunner exports commandRunner interface for testing.
type CommandRunner = commandRunner

// FileStatter exports fileStatter interface for testing.
type FileStatter = fileStatter

// LockPath exports Cutter.lockPath for testing.
func (c *Cutter) LockPath(outDir, src string) (string, error) {
	return c.lockPath(outDir, src)
}

// WithIDGenerator replaces the temporary file name generator.
func WithIDGenerator(fn func() string) CutterOption {
	return func(c *Cutter) { c.newID = fn }
}
