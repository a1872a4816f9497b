package auth

import "errors"

// Sentinel errors for token acquisition.
var (
	ErrTokenRequest = errors.New("token request failed")
	ErrEmptyToken   = errors.New("authorization server returned an empty token")
)
