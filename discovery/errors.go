package discovery

import "errors"

var (
	ErrClient     = errors.New("failed to create discovery client")
	ErrRegister   = errors.New("failed to register service instance")
	ErrDeregister = errors.New("failed to deregister service instance")
	ErrKVRead     = errors.New("failed to read key")
)
