package boot

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/GoCodeAlone/boot/beans"
	"github.com/GoCodeAlone/boot/config"
	"github.com/GoCodeAlone/boot/discovery"
	"github.com/GoCodeAlone/boot/lifecycle"
	"github.com/GoCodeAlone/boot/logging"
	"github.com/GoCodeAlone/boot/scheduler"
	"github.com/GoCodeAlone/boot/server"
)

// Built-in listener IDs, in registration order.
const (
	LoggingListenerID       = "logging"
	StartingLogListenerID   = "starting-log"
	MetricsListenerID       = "metrics"
	ConfigWatchListenerID   = "config-watch"
	BannerListenerID        = "banner"
	SchedulerListenerID     = "scheduler"
	RegistryListenerID      = "discovery-registry"
	DeRegistryListenerID    = "discovery-deregistry"
	LoggingCleanListenerID  = "logging-clean"
	discoveryRequestTimeout = 5 * time.Second
	schedulerStopTimeout    = 5 * time.Second
)

func (a *Application) builtinListeners() []lifecycle.Listener {
	return []lifecycle.Listener{
		lifecycle.NewListener(LoggingListenerID, a.onLogging, lifecycle.EventTypeStarting),
		lifecycle.NewListener(StartingLogListenerID, a.onStartingLog, lifecycle.EventTypeStarting),
		lifecycle.NewListener(MetricsListenerID, a.onMetrics),
		lifecycle.NewListener(ConfigWatchListenerID, a.onConfigWatch,
			lifecycle.EventTypeEnvironmentPrepared, lifecycle.EventTypeStopped, lifecycle.EventTypeFailed),
		lifecycle.NewListener(BannerListenerID, a.onBanner, lifecycle.EventTypeEnvironmentPrepared),
		lifecycle.NewListener(SchedulerListenerID, a.onScheduler,
			lifecycle.EventTypeStarted, lifecycle.EventTypeStopped, lifecycle.EventTypeFailed),
		lifecycle.NewListener(RegistryListenerID, a.onRegister, lifecycle.EventTypeStarted),
		lifecycle.NewListener(DeRegistryListenerID, a.onDeregister, lifecycle.EventTypeStopped),
		lifecycle.NewListener(LoggingCleanListenerID, a.onLoggingClean, lifecycle.EventTypeStopped),
	}
}

// onLogging replaces the console logger with one built from logger.*.
func (a *Application) onLogging(_ context.Context, e lifecycle.Event) error {
	if a.customLogger {
		return nil
	}
	ev, ok := AsApplicationEvent(e)
	if !ok || ev.Bootstrap == nil {
		return nil
	}
	logger, err := logging.New(ev.Bootstrap.Logger)
	if err != nil {
		return err
	}
	a.logger.Swap(logger)
	a.fileLogger = logger
	return nil
}

func (a *Application) onStartingLog(_ context.Context, e lifecycle.Event) error {
	ev, _ := AsApplicationEvent(e)
	a.logger.Info(fmt.Sprintf("Application %s is starting", ev.Name), "mode", ModeName(a.mode), "pid", os.Getpid())
	return nil
}

// onMetrics records a startup step per event.
func (a *Application) onMetrics(_ context.Context, e lifecycle.Event) error {
	if a.startup == nil {
		return nil
	}
	kind := string(e.Type())
	a.startup.Step("application." + strings.ReplaceAll(kind, "_", "-"))
	a.startup.Event(kind)
	if e.Type().Terminal() {
		a.startup.Stopped()
	}
	return nil
}

func (a *Application) onConfigWatch(_ context.Context, e lifecycle.Event) error {
	if e.Type().Terminal() {
		if a.watcher == nil {
			return nil
		}
		err := a.watcher.Close()
		a.watcher = nil
		return err
	}

	ev, _ := AsApplicationEvent(e)
	if ev.Bootstrap == nil || !ev.Bootstrap.Application.Config.Watch {
		return nil
	}
	if len(a.nativeFiles) == 0 {
		a.logger.Debug("No config files to watch")
		return nil
	}
	w, err := config.Watch(ev.Environment, a.nativeFiles, a.logger, nil)
	if err != nil {
		return err
	}
	a.watcher = w
	a.logger.Info("Watching config files", "files", a.nativeFiles)
	return nil
}

func (a *Application) onBanner(_ context.Context, e lifecycle.Event) error {
	if !a.bannerEnabled {
		return nil
	}
	ev, _ := AsApplicationEvent(e)
	return printBanner(a.bannerOut, ev.Name, ModeName(a.mode), ev.Environment.ActiveProfiles())
}

func (a *Application) onScheduler(ctx context.Context, e lifecycle.Event) error {
	ev, _ := AsApplicationEvent(e)
	if ev.Context == nil {
		return nil
	}
	sched, ok := beans.TryGet[*scheduler.Scheduler](ev.Context.Registry)
	if !ok {
		return nil
	}
	if e.Type() == lifecycle.EventTypeStarted {
		return sched.Start(ctx)
	}
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), schedulerStopTimeout)
	defer cancel()
	return sched.Stop(stopCtx)
}

// onRegister advertises the instance to the discovery backend. Failures
// are logged and the run continues.
func (a *Application) onRegister(ctx context.Context, e lifecycle.Event) error {
	ev, _ := AsApplicationEvent(e)
	props := ev.Bootstrap.Application.Cloud.Discovery
	registry, ok := beans.TryGet[discovery.Registry](ev.Context.Registry)
	if !ok {
		return nil
	}

	port := ev.Bootstrap.Application.Port
	if handle, ok := beans.TryGet[*server.Handle](ev.Context.Registry); ok {
		port = handle.Port()
	}
	instance := discovery.NewInstance(ev.Name, port, props)

	ctx, cancel := context.WithTimeout(ctx, discoveryRequestTimeout)
	defer cancel()
	if err := registry.Register(ctx, instance); err != nil {
		return err
	}
	beans.Set(ev.Context.Registry, &discovery.Registration{Instance: instance, RegisteredAt: time.Now()})
	a.logger.Info("Registered service instance", "id", instance.ID, "health", instance.Health.URL)
	return nil
}

func (a *Application) onDeregister(ctx context.Context, e lifecycle.Event) error {
	ev, _ := AsApplicationEvent(e)
	reg, ok := beans.TryGet[*discovery.Registration](ev.Context.Registry)
	if !ok {
		return nil
	}
	registry, ok := beans.TryGet[discovery.Registry](ev.Context.Registry)
	if !ok {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), discoveryRequestTimeout)
	defer cancel()
	if err := registry.Deregister(ctx, reg.Instance); err != nil {
		return err
	}
	beans.Remove[*discovery.Registration](ev.Context.Registry)
	a.logger.Info("Deregistered service instance", "id", reg.Instance.ID)
	return nil
}

// onLoggingClean removes log files older than logging.Retention.
func (a *Application) onLoggingClean(_ context.Context, e lifecycle.Event) error {
	ev, _ := AsApplicationEvent(e)
	opts := ev.Bootstrap.Logger
	if !opts.Enabled {
		return nil
	}
	removed, err := logging.CleanOld(opts.Dir, logging.Retention, time.Now())
	if err != nil {
		return err
	}
	if len(removed) > 0 {
		a.logger.Info("Removed old log files", "count", len(removed))
	}
	return nil
}
