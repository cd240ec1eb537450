package discovery

import (
	"context"
	"fmt"

	"github.com/hashicorp/consul/api"
)

// Consul implements Registry and KVReader against a Consul agent.
type Consul struct {
	client *api.Client
}

// NewConsul creates a client for the agent at address.
func NewConsul(server ServerProperties) (*Consul, error) {
	cfg := api.DefaultConfig()
	cfg.Address = server.Address
	if server.Token != "" {
		cfg.Token = server.Token
	}
	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrClient, err)
	}
	return &Consul{client: client}, nil
}

// Register adds the instance with an HTTP health check that starts passing.
func (c *Consul) Register(ctx context.Context, instance ServiceInstance) error {
	reg := &api.AgentServiceRegistration{
		ID:      instance.ID,
		Name:    instance.Name,
		Address: instance.Host,
		Port:    instance.Port,
		Meta:    map[string]string{"scheme": instance.Scheme},
		Check: &api.AgentServiceCheck{
			HTTP:     instance.Health.URL,
			Interval: instance.Health.Interval,
			Status:   api.HealthPassing,
		},
	}
	opts := api.ServiceRegisterOpts{}.WithContext(ctx)
	if err := c.client.Agent().ServiceRegisterOpts(reg, opts); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrRegister, instance.ID, err)
	}
	return nil
}

// Deregister removes the instance.
func (c *Consul) Deregister(ctx context.Context, instance ServiceInstance) error {
	q := (&api.QueryOptions{}).WithContext(ctx)
	if err := c.client.Agent().ServiceDeregisterOpts(instance.ID, q); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrDeregister, instance.ID, err)
	}
	return nil
}

// Get reads a raw KV entry.
func (c *Consul) Get(ctx context.Context, key string) ([]byte, bool, error) {
	q := (&api.QueryOptions{}).WithContext(ctx)
	pair, _, err := c.client.KV().Get(key, q)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %w", ErrKVRead, key, err)
	}
	if pair == nil {
		return nil, false, nil
	}
	return pair.Value, true, nil
}
