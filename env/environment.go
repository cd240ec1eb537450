// Package env holds the layered configuration Environment.
//
// An Environment is an ordered list of property sources. Lookups walk the
// list front to back and return the first value that converts to the
// requested type; a value of the wrong type does not stop the search. The
// process environment is always consulted last.
package env

import (
	"slices"
	"sync"
)

// DefaultProfile is the profile whose files and keys carry no suffix.
const DefaultProfile = "default"

// Environment is safe for concurrent use. Sources are usually added during
// boot only.
type Environment struct {
	mu        sync.RWMutex
	sources   []PropertySource
	system    PropertySource
	profiles  []string
	locations []string
	fileNames []string
}

// Option configures an Environment.
type Option func(*Environment)

// WithProfiles sets the active profiles. Empty options keep the defaults.
func WithProfiles(profiles ...string) Option {
	return func(e *Environment) {
		if len(profiles) > 0 {
			e.profiles = slices.Clone(profiles)
		}
	}
}

// WithLocations sets the directories searched for native config files.
func WithLocations(locations ...string) Option {
	return func(e *Environment) {
		if len(locations) > 0 {
			e.locations = slices.Clone(locations)
		}
	}
}

// WithFileNames sets the config file name patterns.
func WithFileNames(names ...string) Option {
	return func(e *Environment) {
		if len(names) > 0 {
			e.fileNames = slices.Clone(names)
		}
	}
}

// WithSystemSource replaces the trailing process environment source. Passing
// nil disables it.
func WithSystemSource(src PropertySource) Option {
	return func(e *Environment) { e.system = src }
}

// New creates an Environment with the given sources in priority order,
// followed by a snapshot of the process environment.
func New(sources []PropertySource, opts ...Option) *Environment {
	e := &Environment{
		sources:   slices.Clone(sources),
		system:    NewSystemEnvironment(),
		profiles:  []string{DefaultProfile},
		locations: []string{"."},
		fileNames: []string{"config.toml"},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddPropertySource appends src with the lowest priority among the explicit
// sources. The process environment stays behind it.
func (e *Environment) AddPropertySource(src PropertySource) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sources = append(e.sources, src)
}

// ReplacePropertySource swaps the source with the same name in place and
// reports whether one was found.
func (e *Environment) ReplacePropertySource(src PropertySource) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i, s := range e.sources {
		if s.Name() == src.Name() {
			e.sources[i] = src
			return true
		}
	}
	return false
}

// PropertySource returns the source registered under name.
func (e *Environment) PropertySource(name string) (PropertySource, bool) {
	for _, s := range e.Sources() {
		if s.Name() == name {
			return s, true
		}
	}
	return nil, false
}

// Sources returns the sources in lookup order, the process environment last.
func (e *Environment) Sources() []PropertySource {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]PropertySource, 0, len(e.sources)+1)
	out = append(out, e.sources...)
	if e.system != nil {
		out = append(out, e.system)
	}
	return out
}

// SourceNames lists source names in lookup order.
func (e *Environment) SourceNames() []string {
	srcs := e.Sources()
	names := make([]string, len(srcs))
	for i, s := range srcs {
		names[i] = s.Name()
	}
	return names
}

// ActiveProfiles returns the active profiles.
func (e *Environment) ActiveProfiles() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.profiles)
}

// Locations returns the config search directories.
func (e *Environment) Locations() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.locations)
}

// FileNames returns the config file name patterns.
func (e *Environment) FileNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.fileNames)
}

// Contains reports whether any source holds key, regardless of type.
func (e *Environment) Contains(key string) bool {
	for _, s := range e.Sources() {
		if _, ok := s.Property(key); ok {
			return true
		}
	}
	return false
}

// GetProperty returns the first value for key that converts to T. Sources
// holding key with an incompatible value are skipped.
func GetProperty[T any](e *Environment, key string) (T, bool) {
	for _, s := range e.Sources() {
		raw, ok := s.Property(key)
		if !ok {
			continue
		}
		if v, err := Convert[T](raw); err == nil {
			return v, true
		}
	}
	var zero T
	return zero, false
}

// GetPropertyDefault is GetProperty with a fallback value.
func GetPropertyDefault[T any](e *Environment, key string, def T) T {
	if v, ok := GetProperty[T](e, key); ok {
		return v
	}
	return def
}
