// Package cache provides named in-memory caches with a fixed capacity and
// expiry, shared by the application as a single bean.
package cache

import (
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultCapacity is the maximum number of entries per cache.
	DefaultCapacity = 10000

	// DefaultTTL is how long an entry lives after it was last written.
	DefaultTTL = 30 * time.Minute
)

// Cache is a single named cache.
type Cache = expirable.LRU[string, any]

// Manager hands out caches by name, creating them on first use.
type Manager struct {
	mu       sync.Mutex
	caches   map[string]*Cache
	capacity int
	ttl      time.Duration
}

// Option configures a Manager.
type Option func(*Manager)

// WithCapacity sets the per-cache capacity.
func WithCapacity(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.capacity = n
		}
	}
}

// WithTTL sets the entry lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.ttl = ttl
		}
	}
}

// NewManager creates an empty manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		caches:   make(map[string]*Cache),
		capacity: DefaultCapacity,
		ttl:      DefaultTTL,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Cache returns the cache called name.
func (m *Manager) Cache(name string) *Cache {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.caches[name]
	if !ok {
		c = expirable.NewLRU[string, any](m.capacity, nil, m.ttl)
		m.caches[name] = c
	}
	return c
}

// Names lists existing caches, sorted.
func (m *Manager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.caches))
	for n := range m.caches {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Purge empties every cache.
func (m *Manager) Purge() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.caches {
		c.Purge()
	}
}

// Get reads a typed value from the named cache.
func Get[T any](m *Manager, name, key string) (T, bool) {
	var zero T
	v, ok := m.Cache(name).Get(key)
	if !ok {
		return zero, false
	}
	t, ok := v.(T)
	return t, ok
}
