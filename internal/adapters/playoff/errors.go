package playoff

import "errors"

// Sentinel errors for the gamification API.
var (
	// ErrProtocol marks a response outside the documented contract.
	ErrProtocol       = errors.New("gamification API protocol violation")
	ErrPlayerNotFound = errors.New("player not found")
)
