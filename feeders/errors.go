package feeders

import (
	"errors"
)

// Static error definitions for feeders
var (
	ErrUnsupportedFormat = errors.New("unsupported config format")
	ErrTomlDecode        = errors.New("failed to decode toml")
	ErrYamlDecode        = errors.New("failed to decode yaml")
	ErrJSONDecode        = errors.New("failed to decode json")
	ErrDotEnvInvalidLine = errors.New("invalid .env line format")
)
