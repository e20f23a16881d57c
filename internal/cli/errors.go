package cli

import (
	"errors"
	"fmt"
)

// CLI-specific sentinel errors.
// These are validation/usage errors that don't belong to domain packages.

var (
	// ErrAPIKeyMissing indicates OPENAI_API_KEY environment variable is not set.
	ErrAPIKeyMissing = errors.New("OPENAI_API_KEY environment variable is required for transcription")

	// ErrInputTooLarge indicates a split input that is not yet a compliant chunk.
	ErrInputTooLarge = errors.New("input exceeds the chunk limits")

	// ErrChunkTooLarge indicates a file whose size on disk exceeds the limit.
	ErrChunkTooLarge = errors.New("chunk exceeds the size limit")

	// ErrDurationExceeded indicates a file longer than the transcription limit.
	ErrDurationExceeded = errors.New("chunk exceeds the duration limit")

	// ErrOutputExists indicates the output file already exists.
	ErrOutputExists = errors.New("output file already exists")
)

// messageError reports a fixed user-facing message while still matching
// kind with errors.Is.
type messageError struct {
	msg  string
	kind error
}

func (e *messageError) Error() string { return e.msg }

func (e *messageError) Unwrap() error { return e.kind }

// newMessageError returns an error whose text is exactly the formatted message.
func newMessageError(kind error, format string, args ...any) error {
	return &messageError{msg: fmt.Sprintf(format, args...), kind: kind}
}
