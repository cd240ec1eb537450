package boot

import (
	"errors"
)

// Application errors
var (
	// Construction errors
	ErrModeNil         = errors.New("application mode is nil")
	ErrLoggerNil       = errors.New("logger is nil")
	ErrListenerNil     = errors.New("listener is nil")
	ErrInitializerNil  = errors.New("initializer is nil")
	ErrObserverNil     = errors.New("observer is nil")
	ErrCheckNil        = errors.New("health check is nil")
	ErrUnsupportedMode = errors.New("unsupported application mode")

	// Run errors
	ErrAlreadyRun = errors.New("application has already been run")
	ErrBootstrap  = errors.New("bootstrap failed")
	ErrRefresh    = errors.New("context refresh failed")
	ErrInitialize = errors.New("context initializer failed")
)
