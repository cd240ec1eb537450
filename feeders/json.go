package feeders

import (
	"encoding/json"
	"fmt"
)

// JSONFeeder reads a JSON file.
type JSONFeeder struct {
	Path string
}

func NewJSONFeeder(filePath string) JSONFeeder {
	return JSONFeeder{Path: filePath}
}

// Feed decodes the whole file.
func (j JSONFeeder) Feed() (map[string]any, error) {
	data, err := readFile(j.Path)
	if err != nil {
		return nil, err
	}
	values, err := ParseJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", j.Path, err)
	}
	return values, nil
}

// ParseJSON decodes a JSON object document.
func ParseJSON(data []byte) (map[string]any, error) {
	values := make(map[string]any)
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrJSONDecode, err)
	}
	return values, nil
}
