package intake

import "errors"

// Sentinel kinds for intake errors.
var (
	// ErrParse marks a message body that is not a valid completion event.
	ErrParse = errors.New("invalid message")
	// ErrMismatch marks a valid event that is not meant for this processor.
	ErrMismatch = errors.New("message does not match")
)
