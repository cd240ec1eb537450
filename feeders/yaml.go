package feeders

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YamlFeeder reads a YAML file.
type YamlFeeder struct {
	Path string
}

func NewYamlFeeder(filePath string) YamlFeeder {
	return YamlFeeder{Path: filePath}
}

// Feed decodes the whole file.
func (y YamlFeeder) Feed() (map[string]any, error) {
	data, err := readFile(y.Path)
	if err != nil {
		return nil, err
	}
	values, err := ParseYAML(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", y.Path, err)
	}
	return values, nil
}

// ParseYAML decodes a YAML mapping document. An empty document yields an
// empty map.
func ParseYAML(data []byte) (map[string]any, error) {
	values := make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrYamlDecode, err)
	}
	return values, nil
}
