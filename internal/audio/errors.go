package audio

import "errors"

// ErrFileNotFound indicates the specified input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// ErrProbeFailed indicates metadata could not be read from an audio file.
var ErrProbeFailed = errors.New("audio probe failed")

// ErrCutFailed indicates FFmpeg or the filesystem failed while writing a segment.
var ErrCutFailed = errors.New("audio cut failed")

// ErrLocked indicates another process is already cutting the same source into
// the same output directory.
var ErrLocked = errors.New("output is locked by another process")
