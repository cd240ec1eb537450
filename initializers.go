package boot

import (
	"context"
	"errors"

	"github.com/GoCodeAlone/boot/beans"
	"github.com/GoCodeAlone/boot/cache"
	"github.com/GoCodeAlone/boot/discovery"
	"github.com/GoCodeAlone/boot/health"
	"github.com/GoCodeAlone/boot/scheduler"
)

// BootstrapInitializer prepares the BootstrapContext. An error aborts Run
// before any event is emitted.
type BootstrapInitializer func(bc *BootstrapContext) error

// ContextInitializer prepares the ApplicationContext before it is loaded.
// An error ends the run in Failed.
type ContextInitializer func(ac *ApplicationContext) error

// PingCheck is the name of the always-passing health check.
const PingCheck = "ping"

func builtinBootstrapInitializers() []BootstrapInitializer {
	return []BootstrapInitializer{consulInitializer}
}

// consulInitializer registers a Consul client for discovery and remote
// config unless an initializer already registered one.
func consulInitializer(bc *BootstrapContext) error {
	cloud := bc.Properties.Application.Cloud
	if !cloud.Discovery.Configured() && !cloud.Config.Enabled {
		return nil
	}
	if beans.Has[discovery.Registry](bc.Registry) && beans.Has[discovery.KVReader](bc.Registry) {
		return nil
	}

	srv := cloud.Discovery.Server
	if !cloud.Discovery.Configured() {
		srv = bc.Properties.RemoteServer()
	}
	client, err := discovery.NewConsul(srv)
	if err != nil {
		return err
	}
	if cloud.Discovery.Configured() {
		beans.SetIfAbsent[discovery.Registry](bc.Registry, client)
	}
	if cloud.Config.Enabled {
		kv := client
		if remote := bc.Properties.RemoteServer(); remote != srv {
			if kv, err = discovery.NewConsul(remote); err != nil {
				return err
			}
		}
		beans.SetIfAbsent[discovery.KVReader](bc.Registry, kv)
	}
	return nil
}

func builtinContextInitializers(a *Application) []ContextInitializer {
	return []ContextInitializer{
		contextIDInitializer,
		a.healthInitializer,
		a.schedulerInitializer,
		cacheInitializer,
	}
}

func contextIDInitializer(ac *ApplicationContext) error {
	beans.SetIfAbsent(ac.Registry, ContextID{ID: ac.Name()})
	return nil
}

func (a *Application) healthInitializer(ac *ApplicationContext) error {
	agg, ok := beans.TryGet[*health.Aggregator](ac.Registry)
	if !ok {
		agg = health.NewAggregator(0)
	}
	ping := health.NewCheck(PingCheck, func(context.Context) error { return nil })
	if err := agg.RegisterCheck(ping); err != nil && !errors.Is(err, health.ErrDuplicateCheck) {
		return err
	}
	for _, c := range a.healthChecks {
		if err := agg.RegisterCheck(c); err != nil {
			return err
		}
	}
	beans.SetIfAbsent(ac.Registry, agg)
	return nil
}

func (a *Application) schedulerInitializer(ac *ApplicationContext) error {
	beans.SetIfAbsent(ac.Registry, scheduler.NewScheduler(scheduler.WithLogger(a.logger)))
	return nil
}

func cacheInitializer(ac *ApplicationContext) error {
	beans.SetIfAbsent(ac.Registry, cache.NewManager())
	return nil
}
