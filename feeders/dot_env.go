package feeders

import (
	"bufio"
	"bytes"
	"fmt"
	"strings"
)

// DotEnvFeeder reads a .env file. KEY_NAME=value becomes key.name.
type DotEnvFeeder struct {
	Path string
}

func NewDotEnvFeeder(filePath string) DotEnvFeeder {
	return DotEnvFeeder{Path: filePath}
}

// Feed parses the whole file.
func (f DotEnvFeeder) Feed() (map[string]any, error) {
	data, err := readFile(f.Path)
	if err != nil {
		return nil, err
	}
	values, err := ParseDotEnv(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return values, nil
}

// ParseDotEnv parses KEY=value lines. Blank lines and # comments are
// skipped, an "export " prefix is ignored and matching single or double
// quotes around the value are removed.
func ParseDotEnv(data []byte) (map[string]any, error) {
	values := make(map[string]any)
	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")

		idx := strings.Index(line, "=")
		if idx <= 0 {
			return nil, fmt.Errorf("%w at line %d: %s", ErrDotEnvInvalidLine, lineNum, line)
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') || (value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		if err := setPath(values, strings.Split(strings.ToLower(strings.ReplaceAll(key, "_", ".")), "."), value); err != nil {
			return nil, fmt.Errorf("%w at line %d: %w", ErrDotEnvInvalidLine, lineNum, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanner error: %w", err)
	}
	return values, nil
}

// setPath stores value under the nested path, creating maps as needed.
func setPath(m map[string]any, path []string, value string) error {
	for i, part := range path {
		if i == len(path)-1 {
			if _, isMap := m[part].(map[string]any); isMap {
				return fmt.Errorf("key %s is also a table", strings.Join(path, "."))
			}
			m[part] = value
			return nil
		}
		next, ok := m[part]
		if !ok {
			child := make(map[string]any)
			m[part] = child
			m = child
			continue
		}
		child, isMap := next.(map[string]any)
		if !isMap {
			return fmt.Errorf("key %s is also a value", strings.Join(path[:i+1], "."))
		}
		m = child
	}
	return nil
}
