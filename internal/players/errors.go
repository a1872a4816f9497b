package players

import "errors"

// ErrInvalidArgument marks a malformed command argument.
var ErrInvalidArgument = errors.New("invalid argument")
