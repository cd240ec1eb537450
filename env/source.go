package env

import (
	"os"
	"sort"
	"strings"
)

// PropertySource is a named, read-only tree of configuration values.
// Keys are dotted paths ("application.config.locations") and are matched
// case-insensitively.
type PropertySource interface {
	Name() string
	Property(key string) (any, bool)
}

// MapPropertySource serves properties from a nested map, typically the
// result of decoding a TOML or YAML document.
type MapPropertySource struct {
	name string
	root map[string]any
}

// NewMapPropertySource copies values into a new source. Nested maps are
// copied as well and all keys are lowercased.
func NewMapPropertySource(name string, values map[string]any) *MapPropertySource {
	return &MapPropertySource{name: name, root: normalizeMap(values)}
}

// Name returns the source name.
func (s *MapPropertySource) Name() string { return s.name }

// Property walks the dotted key through nested maps. A key stored literally
// with dots is matched as well.
func (s *MapPropertySource) Property(key string) (any, bool) {
	key = strings.ToLower(key)
	if v, ok := s.root[key]; ok {
		return v, true
	}
	return lookupPath(s.root, strings.Split(key, "."))
}

// Keys returns every leaf key in dotted form, sorted.
func (s *MapPropertySource) Keys() []string {
	var keys []string
	collectKeys("", s.root, &keys)
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the underlying tree.
func (s *MapPropertySource) Map() map[string]any {
	return normalizeMap(s.root)
}

func lookupPath(node map[string]any, parts []string) (any, bool) {
	// Longest prefix first, so "a.b" may be a literal key inside a nested map.
	for j := len(parts); j > 0; j-- {
		v, ok := node[strings.Join(parts[:j], ".")]
		if !ok {
			continue
		}
		if j == len(parts) {
			return v, true
		}
		if child, isMap := v.(map[string]any); isMap {
			if found, ok := lookupPath(child, parts[j:]); ok {
				return found, true
			}
		}
	}
	return nil, false
}

func collectKeys(prefix string, node map[string]any, out *[]string) {
	for k, v := range node {
		full := k
		if prefix != "" {
			full = prefix + "." + k
		}
		if child, ok := v.(map[string]any); ok {
			collectKeys(full, child, out)
			continue
		}
		*out = append(*out, full)
	}
}

func normalizeMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[strings.ToLower(k)] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalizeMap(t)
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, val := range t {
			if ks, ok := k.(string); ok {
				m[ks] = val
			}
		}
		return normalizeMap(m)
	case []any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeValue(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, item := range t {
			out[i] = normalizeMap(item)
		}
		return out
	default:
		return v
	}
}

// SystemEnvironmentName is the name of the process environment source.
const SystemEnvironmentName = "systemEnvironment"

// EnvPropertySource exposes environment variables as dotted properties:
// APPLICATION_CONFIG_WATCH is served as "application.config.watch".
type EnvPropertySource struct {
	name string
	flat map[string]string
}

// NewEnvPropertySource builds a source from KEY=VALUE pairs.
func NewEnvPropertySource(name string, environ []string) *EnvPropertySource {
	flat := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}
		flat[envKey(k)] = v
	}
	return &EnvPropertySource{name: name, flat: flat}
}

// NewSystemEnvironment snapshots os.Environ.
func NewSystemEnvironment() *EnvPropertySource {
	return NewEnvPropertySource(SystemEnvironmentName, os.Environ())
}

func envKey(k string) string {
	return strings.ToLower(strings.ReplaceAll(k, "_", "."))
}

// Name returns the source name.
func (s *EnvPropertySource) Name() string { return s.name }

// Property returns the variable for key. When key is a prefix of other
// variables a nested map of them is returned, so a group of variables can
// be bound to a struct.
func (s *EnvPropertySource) Property(key string) (any, bool) {
	key = strings.ToLower(key)
	if v, ok := s.flat[key]; ok {
		return v, true
	}
	prefix := key + "."
	var tree map[string]any
	for k, v := range s.flat {
		rest, ok := strings.CutPrefix(k, prefix)
		if !ok {
			continue
		}
		if tree == nil {
			tree = make(map[string]any)
		}
		insertPath(tree, strings.Split(rest, "."), v)
	}
	if tree == nil {
		return nil, false
	}
	return tree, true
}

func insertPath(node map[string]any, parts []string, v string) {
	for _, p := range parts[:len(parts)-1] {
		child, ok := node[p].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[p] = child
		}
		node = child
	}
	last := parts[len(parts)-1]
	if _, isMap := node[last].(map[string]any); isMap {
		return
	}
	node[last] = v
}
