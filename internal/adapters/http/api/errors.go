package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrServe        = errors.New("http serve failed")
	ErrConsumerDown = errors.New("stream consumer is not connected")
)
