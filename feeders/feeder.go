// Package feeders decodes configuration documents into property sources.
// The format is chosen by file extension.
package feeders

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/GoCodeAlone/boot/env"
)

// Feeder produces a nested key/value tree from a document.
type Feeder interface {
	Feed() (map[string]any, error)
}

// ForFile picks a feeder from the file extension.
func ForFile(path string) (Feeder, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return NewTomlFeeder(path), nil
	case ".yaml", ".yml":
		return NewYamlFeeder(path), nil
	case ".json":
		return NewJSONFeeder(path), nil
	case ".env":
		return NewDotEnvFeeder(path), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

// Parse decodes data in the named format: "toml", "yaml", "yml", "json"
// or "env".
func Parse(format string, data []byte) (map[string]any, error) {
	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "toml":
		return ParseTOML(data)
	case "yaml", "yml":
		return ParseYAML(data)
	case "json":
		return ParseJSON(data)
	case "env":
		return ParseDotEnv(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// PropertySource feeds f into a named property source.
func PropertySource(name string, f Feeder) (*env.MapPropertySource, error) {
	values, err := f.Feed()
	if err != nil {
		return nil, err
	}
	return env.NewMapPropertySource(name, values), nil
}

func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return data, nil
}
