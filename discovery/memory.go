package discovery

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Memory is an in-process Registry and KVReader, used when no backend is
// reachable and in tests.
type Memory struct {
	mu        sync.RWMutex
	instances map[string]ServiceInstance
	kv        map[string][]byte

	// RegisterErr and DeregisterErr, when set, are returned instead of
	// performing the operation.
	RegisterErr   error
	DeregisterErr error
	KVErr         error
}

// NewMemory creates an empty in-memory backend.
func NewMemory() *Memory {
	return &Memory{
		instances: make(map[string]ServiceInstance),
		kv:        make(map[string][]byte),
	}
}

func (m *Memory) Register(_ context.Context, instance ServiceInstance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.RegisterErr != nil {
		return fmt.Errorf("%w: %s: %w", ErrRegister, instance.ID, m.RegisterErr)
	}
	m.instances[instance.ID] = instance
	return nil
}

func (m *Memory) Deregister(_ context.Context, instance ServiceInstance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeregisterErr != nil {
		return fmt.Errorf("%w: %s: %w", ErrDeregister, instance.ID, m.DeregisterErr)
	}
	delete(m.instances, instance.ID)
	return nil
}

// Instances returns registered instances sorted by ID.
func (m *Memory) Instances() []ServiceInstance {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ServiceInstance, 0, len(m.instances))
	for _, inst := range m.instances {
		out = append(out, inst)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Put stores a KV entry.
func (m *Memory) Put(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.kv[key] = value
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.KVErr != nil {
		return nil, false, fmt.Errorf("%w: %s: %w", ErrKVRead, key, m.KVErr)
	}
	v, ok := m.kv[key]
	return v, ok, nil
}
