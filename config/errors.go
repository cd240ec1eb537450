package config

import (
	"errors"
)

// Static errors for configuration package
var (
	ErrBootstrapParse   = errors.New("malformed bootstrap configuration")
	ErrBootstrapRead    = errors.New("failed to read bootstrap configuration")
	ErrNoActiveProfiles = errors.New("no active profiles")
	ErrNativeConfig     = errors.New("malformed config file")
	ErrRemoteConfig     = errors.New("remote config unavailable")
)
