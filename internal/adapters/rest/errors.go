package rest

import (
	"errors"
	"fmt"
)

// ErrTransport wraps failures to reach an API at all.
var ErrTransport = errors.New("request failed")

// StatusError is returned for responses outside the expected status range.
type StatusError struct {
	Client    string
	Operation string
	Status    int
	Body      string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d: %s", e.Client, e.Operation, e.Status, e.Body)
}
