package boot

import (
	"io"

	"github.com/GoCodeAlone/boot/config"
	"github.com/GoCodeAlone/boot/env"
	"github.com/GoCodeAlone/boot/health"
	"github.com/GoCodeAlone/boot/lifecycle"
	"github.com/go-chi/chi/v5"
)

// Option represents a functional option for configuring applications
type Option func(*Application) error

// WithMode selects server or non-server mode. The default is ServerMode{}.
func WithMode(mode ApplicationMode) Option {
	return func(a *Application) error {
		switch m := mode.(type) {
		case nil:
			return ErrModeNil
		case *ServerMode:
			if m == nil {
				return ErrModeNil
			}
			a.mode = *m
		case *NoneMode:
			a.mode = NoneMode{}
		default:
			a.mode = mode
		}
		return nil
	}
}

// WithBootstrapFile reads bootstrap properties from path instead of
// ./bootstrap.toml.
func WithBootstrapFile(path string) Option {
	return func(a *Application) error {
		a.bootstrapPath = path
		return nil
	}
}

// WithBootstrapProperties skips reading a bootstrap file.
func WithBootstrapProperties(props *config.BootstrapProperties) Option {
	return func(a *Application) error {
		a.bootstrapProps = props
		return nil
	}
}

// WithLogger sets the application logger. The logger.* properties are then
// not used to build one.
func WithLogger(logger Logger) Option {
	return func(a *Application) error {
		if logger == nil {
			return ErrLoggerNil
		}
		a.logger.Swap(logger)
		a.customLogger = true
		return nil
	}
}

// WithListener appends listeners after the built-in ones.
func WithListener(listeners ...lifecycle.Listener) Option {
	return func(a *Application) error {
		for _, l := range listeners {
			if l == nil {
				return ErrListenerNil
			}
		}
		a.userListeners = append(a.userListeners, listeners...)
		return nil
	}
}

// WithBootstrapInitializer adds an initializer that runs against the
// bootstrap context before the built-in ones.
func WithBootstrapInitializer(init BootstrapInitializer) Option {
	return func(a *Application) error {
		if init == nil {
			return ErrInitializerNil
		}
		a.bootstrapInitializers = append(a.bootstrapInitializers, init)
		return nil
	}
}

// WithContextInitializer adds an initializer that runs against the
// application context after the built-in ones.
func WithContextInitializer(init ContextInitializer) Option {
	return func(a *Application) error {
		if init == nil {
			return ErrInitializerNil
		}
		a.contextInitializers = append(a.contextInitializers, init)
		return nil
	}
}

// WithRoutes mounts additional routes in server mode.
func WithRoutes(routes ...func(chi.Router)) Option {
	return func(a *Application) error {
		a.routes = append(a.routes, routes...)
		return nil
	}
}

// WithHealthCheck adds a check to /actuator/health.
func WithHealthCheck(checks ...health.Checker) Option {
	return func(a *Application) error {
		for _, c := range checks {
			if c == nil {
				return ErrCheckNil
			}
		}
		a.healthChecks = append(a.healthChecks, checks...)
		return nil
	}
}

// WithBanner turns the startup banner on or off and sets where it is
// written.
func WithBanner(enabled bool, out io.Writer) Option {
	return func(a *Application) error {
		a.bannerEnabled = enabled
		if out != nil {
			a.bannerOut = out
		}
		return nil
	}
}

// WithSystemEnvironment replaces the process environment source; nil
// disables it.
func WithSystemEnvironment(src env.PropertySource) Option {
	return func(a *Application) error {
		a.systemSource = src
		a.systemSourceSet = true
		return nil
	}
}

// WithObserver publishes lifecycle events to observer as CloudEvents.
func WithObserver(observer Observer) Option {
	return func(a *Application) error {
		if observer == nil {
			return ErrObserverNil
		}
		a.userListeners = append(a.userListeners, newObserverBridge(observer))
		return nil
	}
}
