package beans

import "errors"

var (
	// ErrBeanNotFound is used in the panic raised by Get for a missing type.
	ErrBeanNotFound = errors.New("bean not registered")
)
