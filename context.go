package boot

import (
	"github.com/GoCodeAlone/boot/beans"
	"github.com/GoCodeAlone/boot/config"
	"github.com/GoCodeAlone/boot/env"
	"github.com/GoCodeAlone/boot/server"
)

// BootstrapContext exists before the Environment. Bootstrap initializers
// use it to register beans, such as a discovery client, that the rest of
// the boot sequence needs. Its beans are copied into the ApplicationContext.
type BootstrapContext struct {
	Registry   *beans.Registry
	Properties *config.BootstrapProperties
}

func newBootstrapContext(props *config.BootstrapProperties) *BootstrapContext {
	bc := &BootstrapContext{Registry: beans.New(), Properties: props}
	beans.Set(bc.Registry, props)
	return bc
}

// ApplicationContext is the long-lived bean registry and Environment pair.
type ApplicationContext struct {
	Registry    *beans.Registry
	Environment *env.Environment
	Bootstrap   *BootstrapContext

	mode ApplicationMode
}

func newApplicationContext(bc *BootstrapContext, environment *env.Environment, mode ApplicationMode) *ApplicationContext {
	ac := &ApplicationContext{
		Registry:    beans.New(),
		Environment: environment,
		Bootstrap:   bc,
		mode:        mode,
	}
	beans.Set(ac.Registry, environment)
	bc.Registry.CopyInto(ac.Registry)
	return ac
}

// Name returns application.name.
func (c *ApplicationContext) Name() string {
	return env.GetPropertyDefault(c.Environment, "application.name", "application")
}

// Mode returns the mode the application runs in.
func (c *ApplicationContext) Mode() ApplicationMode { return c.mode }

// Server returns the running server handle in server mode.
func (c *ApplicationContext) Server() (*server.Handle, bool) {
	return beans.TryGet[*server.Handle](c.Registry)
}

// ContextID identifies the application context; it defaults to the
// application name.
type ContextID struct {
	ID string
}
