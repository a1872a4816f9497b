package winner

import "errors"

// Sentinel kinds for winner resolution errors.
var (
	ErrReviewTypeNotFound = errors.New("no such review type")
	ErrNoWinner           = errors.New("no winning submission")
	ErrInvalidPageSize    = errors.New("page size must be positive")
	ErrMissingMember      = errors.New("winning submission has no member id")
)
