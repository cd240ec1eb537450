package server

import (
	"errors"
)

// Error definitions
var (
	ErrNoHandler = errors.New("no handler configured")
	ErrBind      = errors.New("failed to bind listener")
)
