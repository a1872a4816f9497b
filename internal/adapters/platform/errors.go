package platform

import "errors"

// Sentinel errors for platform lookups.
var (
	ErrMemberLookup   = errors.New("member lookup failed")
	ErrHandleNotFound = errors.New("member handle not found")
	ErrInvalidBody    = errors.New("invalid JSON body")
)
