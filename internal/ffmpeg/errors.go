package ffmpeg

import "errors"

// ErrNotFound indicates an FFmpeg tool binary could not be located.
var ErrNotFound = errors.New("ffmpeg not found")
