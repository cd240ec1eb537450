package server

import "time"

const (
	// DrainTimeout bounds graceful shutdown before connections are closed.
	DrainTimeout = 10 * time.Second

	// RequestTimeout is applied to every request by the router.
	RequestTimeout = 30 * time.Second

	// DefaultPort is used when application.port is not configured.
	DefaultPort = 8080
)

// Config describes the listener.
type Config struct {
	Host string
	Port int

	// HandleSignals makes the handle shut down on SIGINT and SIGTERM.
	HandleSignals bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}
