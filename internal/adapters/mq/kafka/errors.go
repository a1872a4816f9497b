package kafka

import "errors"

// Sentinel errors for the stream adapter.
var (
	ErrNoBrokers = errors.New("no kafka brokers configured")
	ErrTLSConfig = errors.New("invalid kafka client certificate")
)
