package boot

import (
	"github.com/go-chi/chi/v5"
)

// ApplicationMode selects what refresh does. It is decided once, when the
// application is built. The set of modes is closed: ServerMode and NoneMode.
type ApplicationMode interface {
	modeName() string
}

// ServerMode starts an HTTP listener on refresh and keeps the run alive
// until the listener shuts down.
type ServerMode struct {
	// Host to bind; empty binds every interface.
	Host string

	// Port overrides application.port when non-zero.
	Port int

	// Routes are mounted after the built-in actuator routes.
	Routes []func(chi.Router)

	// IgnoreSignals disables shutdown on SIGINT and SIGTERM.
	IgnoreSignals bool
}

// NoneMode runs the lifecycle without a listener; the run goes from
// Started straight to Stopped.
type NoneMode struct{}

func (ServerMode) modeName() string { return "server" }
func (NoneMode) modeName() string   { return "none" }

// ModeName returns "server" or "none".
func ModeName(m ApplicationMode) string {
	if m == nil {
		return ""
	}
	return m.modeName()
}
