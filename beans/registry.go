// Package beans provides a registry of process-scoped singletons keyed by
// their static Go type.
//
// A Registry holds at most one value per type. Values are stored behind an
// untyped cell and recovered with a checked type assertion, so a mismatch is
// always a programmer error:
//
//	reg := beans.New()
//	beans.Set(reg, &Config{Port: 8080})
//	cfg := beans.Get[*Config](reg)
//
// Interface types can be used as keys as well; the key is the type argument,
// not the dynamic type of the value.
package beans

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Registry is a type-keyed singleton store that is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	cells map[reflect.Type]any
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{cells: make(map[reflect.Type]any)}
}

// Set stores value as the singleton for T. It reports whether this was the
// first registration for T; later calls replace the value and return false.
func Set[T any](r *Registry, value T) bool {
	key := reflect.TypeFor[T]()
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.cells[key]
	r.cells[key] = value
	return !exists
}

// SetIfAbsent stores value only if nothing is registered for T yet. It
// reports whether value was stored.
func SetIfAbsent[T any](r *Registry, value T) bool {
	key := reflect.TypeFor[T]()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.cells[key]; exists {
		return false
	}
	r.cells[key] = value
	return true
}

// TryGet returns the value registered for T, if any.
func TryGet[T any](r *Registry) (T, bool) {
	r.mu.RLock()
	cell, ok := r.cells[reflect.TypeFor[T]()]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, false
	}
	// cell may hold a nil interface value.
	v, _ := cell.(T)
	return v, true
}

// Get returns the value registered for T and panics if there is none. Use it
// only where registration is guaranteed by construction; everything else
// should call TryGet.
func Get[T any](r *Registry) T {
	v, ok := TryGet[T](r)
	if !ok {
		panic(fmt.Sprintf("%v: %s", ErrBeanNotFound, reflect.TypeFor[T]()))
	}
	return v
}

// Has reports whether a value is registered for T.
func Has[T any](r *Registry) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.cells[reflect.TypeFor[T]()]
	return ok
}

// Remove deletes the value registered for T and reports whether one existed.
func Remove[T any](r *Registry) bool {
	key := reflect.TypeFor[T]()
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.cells[key]; !ok {
		return false
	}
	delete(r.cells, key)
	return true
}

// Len returns the number of registered types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.cells)
}

// Types lists the registered type names in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.cells))
	for t := range r.cells {
		names = append(names, t.String())
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// CopyInto copies every registration of r into dst. Types already present in
// dst keep their value.
func (r *Registry) CopyInto(dst *Registry) int {
	if r == dst {
		return 0
	}
	r.mu.RLock()
	snapshot := make(map[reflect.Type]any, len(r.cells))
	for k, v := range r.cells {
		snapshot[k] = v
	}
	r.mu.RUnlock()

	dst.mu.Lock()
	defer dst.mu.Unlock()
	copied := 0
	for k, v := range snapshot {
		if _, exists := dst.cells[k]; exists {
			continue
		}
		dst.cells[k] = v
		copied++
	}
	return copied
}
