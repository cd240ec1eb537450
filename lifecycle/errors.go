package lifecycle

import "errors"

// Static errors for lifecycle package
var (
	ErrListenerPanic = errors.New("listener panicked")
)
