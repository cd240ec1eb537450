package env

import "errors"

var (
	ErrConversion = errors.New("property conversion failed")
)
