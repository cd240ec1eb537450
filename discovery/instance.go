// Package discovery registers the running application with a service
// discovery backend and reads remote configuration from its key/value store.
package discovery

import (
	"context"
	"fmt"
	"net"
	"os"
	"strings"
	"time"
)

// DefaultHealthPath is polled when no health check path is configured.
const DefaultHealthPath = "actuator/health"

// DefaultHealthInterval is used when no check interval is configured.
const DefaultHealthInterval = "30s"

// Properties mirrors application.cloud.discovery.*.
type Properties struct {
	Server ServerProperties `mapstructure:"server"`
	Host   HostProperties   `mapstructure:"host"`
	Health HealthProperties `mapstructure:"health"`
}

type ServerProperties struct {
	Address string `mapstructure:"address"`
	Token   string `mapstructure:"token"`
}

// HostProperties override the advertised address.
type HostProperties struct {
	IP   string `mapstructure:"ip"`
	Port int    `mapstructure:"port"`
}

type HealthProperties struct {
	Check CheckProperties `mapstructure:"check"`
}

type CheckProperties struct {
	Path     string `mapstructure:"path"`
	Interval string `mapstructure:"interval"`
}

// Configured reports whether a discovery server is set.
func (p Properties) Configured() bool {
	return p.Server.Address != ""
}

// HealthCheck is the check the backend runs against the instance.
type HealthCheck struct {
	URL      string
	Interval string
}

// ServiceInstance is a network-reachable copy of the application.
type ServiceInstance struct {
	ID     string
	Name   string
	Host   string
	Port   int
	Scheme string
	Health HealthCheck
}

// URI returns scheme://host:port.
func (i ServiceInstance) URI() string {
	return fmt.Sprintf("%s://%s", i.Scheme, net.JoinHostPort(i.Host, fmt.Sprint(i.Port)))
}

// Registration records a successful Register so the matching Deregister
// can find the instance.
type Registration struct {
	Instance     ServiceInstance
	RegisteredAt time.Time
}

// Registry is the discovery backend contract.
type Registry interface {
	Register(ctx context.Context, instance ServiceInstance) error
	Deregister(ctx context.Context, instance ServiceInstance) error
}

// KVReader reads raw values from a backend key/value store. A missing key
// returns found == false and no error.
type KVReader interface {
	Get(ctx context.Context, key string) (value []byte, found bool, err error)
}

// NewInstance derives the instance advertised for app. The host defaults to
// the machine host name and the port to appPort; both can be overridden by
// props.Host.
func NewInstance(app string, appPort int, props Properties) ServiceInstance {
	host := props.Host.IP
	if host == "" {
		host = LocalHost()
	}
	port := appPort
	if props.Host.Port != 0 {
		port = props.Host.Port
	}
	scheme := "http"
	if port == 443 {
		scheme = "https"
	}

	path := strings.TrimPrefix(props.Health.Check.Path, "/")
	if path == "" {
		path = DefaultHealthPath
	}
	interval := props.Health.Check.Interval
	if interval == "" {
		interval = DefaultHealthInterval
	}

	inst := ServiceInstance{
		ID:     fmt.Sprintf("%s@%s:%d", app, host, port),
		Name:   app,
		Host:   host,
		Port:   port,
		Scheme: scheme,
	}
	inst.Health = HealthCheck{URL: inst.URI() + "/" + path, Interval: interval}
	return inst
}

// LocalHost returns the host name, falling back to the first non-loopback
// IPv4 address and then to 127.0.0.1.
func LocalHost() string {
	if name, err := os.Hostname(); err == nil && name != "" {
		return name
	}
	addrs, err := net.InterfaceAddrs()
	if err == nil {
		for _, a := range addrs {
			if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
				return ipnet.IP.String()
			}
		}
	}
	return "127.0.0.1"
}
