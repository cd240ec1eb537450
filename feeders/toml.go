package feeders

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// TomlFeeder reads a TOML file.
type TomlFeeder struct {
	Path string
}

func NewTomlFeeder(filePath string) TomlFeeder {
	return TomlFeeder{Path: filePath}
}

// Feed decodes the whole file.
func (t TomlFeeder) Feed() (map[string]any, error) {
	data, err := readFile(t.Path)
	if err != nil {
		return nil, err
	}
	values, err := ParseTOML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", t.Path, err)
	}
	return values, nil
}

// ParseTOML decodes a TOML document. Integers decode as int64.
func ParseTOML(data []byte) (map[string]any, error) {
	values := make(map[string]any)
	if _, err := toml.Decode(string(data), &values); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTomlDecode, err)
	}
	return values, nil
}
