// Package boot drives an application through a fixed lifecycle:
// bootstrap, environment preparation, context preparation, refresh, started,
// and finally stopped or failed. Each phase is announced to listeners in
// registration order.
//
//	app, err := boot.NewApplication(boot.WithMode(boot.ServerMode{}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := app.Run(context.Background())
//
// Run blocks in server mode until SIGINT, SIGTERM, Stop or cancellation of
// the context passed to Run.
package boot

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/GoCodeAlone/boot/beans"
	"github.com/GoCodeAlone/boot/config"
	"github.com/GoCodeAlone/boot/discovery"
	"github.com/GoCodeAlone/boot/env"
	"github.com/GoCodeAlone/boot/health"
	"github.com/GoCodeAlone/boot/lifecycle"
	"github.com/GoCodeAlone/boot/logging"
	"github.com/GoCodeAlone/boot/metrics"
	"github.com/GoCodeAlone/boot/server"
	"github.com/go-chi/chi/v5"
)

// RunResult is the terminal outcome of Run.
type RunResult struct {
	// State is lifecycle.StateStopped or lifecycle.StateFailed.
	State lifecycle.State

	// Err is the phase error that led to Failed.
	Err error

	Bootstrap *BootstrapContext
	Context   *ApplicationContext

	// StartupTime is measured up to the Started event.
	StartupTime time.Duration
}

// Failed reports whether the run ended in Failed.
func (r *RunResult) Failed() bool { return r.State == lifecycle.StateFailed }

// Application is the lifecycle orchestrator. It is meant to be run once.
type Application struct {
	mode           ApplicationMode
	bootstrapPath  string
	bootstrapProps *config.BootstrapProperties

	logger       *logging.Swappable
	customLogger bool
	fileLogger   *logging.ZapLogger

	dispatcher            *lifecycle.Dispatcher
	userListeners         []lifecycle.Listener
	bootstrapInitializers []BootstrapInitializer
	contextInitializers   []ContextInitializer

	routes        []func(chi.Router)
	healthChecks  []health.Checker
	bannerEnabled bool
	bannerOut     io.Writer

	systemSource    env.PropertySource
	systemSourceSet bool

	ran   atomic.Bool
	state atomic.Int32

	bootstrapCtx *BootstrapContext
	loader       *config.Loader
	environment  *env.Environment
	appCtx       *ApplicationContext
	nativeFiles  []string
	watcher      *config.Watcher
	startup      *metrics.Startup

	mu            sync.Mutex
	handle        *server.Handle
	stopRequested bool
}

// NewApplication creates an application with the provided options.
func NewApplication(opts ...Option) (*Application, error) {
	a := &Application{
		mode:          ServerMode{},
		logger:        logging.NewSwappable(logging.NewConsole("info")),
		bannerEnabled: true,
		bannerOut:     os.Stdout,
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	switch a.mode.(type) {
	case ServerMode, NoneMode:
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnsupportedMode, a.mode)
	}

	a.dispatcher = lifecycle.NewDispatcher(a.logger)
	a.dispatcher.Register(a.builtinListeners()...)
	a.dispatcher.Register(a.userListeners...)
	return a, nil
}

// Logger returns the application logger.
func (a *Application) Logger() Logger { return a.logger }

// State returns the current lifecycle state.
func (a *Application) State() lifecycle.State { return lifecycle.State(a.state.Load()) }

// ListenerIDs returns listener IDs in dispatch order.
func (a *Application) ListenerIDs() []string { return a.dispatcher.ListenerIDs() }

// Dispatcher exposes the event dispatcher, for metrics.
func (a *Application) Dispatcher() *lifecycle.Dispatcher { return a.dispatcher }

func (a *Application) transition(next lifecycle.State) {
	cur := a.State()
	if !cur.CanTransition(next) {
		panic(fmt.Sprintf("boot: invalid lifecycle transition %s -> %s", cur, next))
	}
	a.state.Store(int32(next))
	a.logger.Debug("Lifecycle transition", "from", cur, "to", next)
}

func (a *Application) emit(ctx context.Context, kind lifecycle.EventType) {
	a.dispatcher.Dispatch(ctx, newEvent(kind, a))
}

func (a *Application) emitFailed(ctx context.Context, err error) {
	ev := newEvent(lifecycle.EventTypeFailed, a)
	ev.Err = err
	a.dispatcher.Dispatch(ctx, ev)
}

// Run executes the lifecycle once. Bootstrap errors, including malformed
// config files, abort the run before any event and are returned. Later
// errors end the run in Failed and are reported in the result with a nil
// error. A second call returns ErrAlreadyRun.
func (a *Application) Run(ctx context.Context) (*RunResult, error) {
	if !a.ran.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRun
	}
	defer a.closeFileLogger()

	bc, err := a.buildBootstrapContext()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBootstrap, err)
	}
	a.bootstrapCtx = bc
	a.loader = a.newLoader()
	if _, err := a.loader.Native(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBootstrap, err)
	}
	a.transition(lifecycle.StateBootstrapContextBuilt)
	a.startup = metrics.NewStartup(bc.Properties.Application.Name)
	beans.Set(bc.Registry, a.startup)

	a.transition(lifecycle.StateStarting)
	a.emit(ctx, lifecycle.EventTypeStarting)

	if err := a.prepareEnvironment(ctx); err != nil {
		return a.fail(ctx, err), nil
	}
	a.transition(lifecycle.StateEnvironmentPrepared)
	a.emit(ctx, lifecycle.EventTypeEnvironmentPrepared)

	a.appCtx = newApplicationContext(bc, a.environment, a.mode)
	a.transition(lifecycle.StateApplicationContextBuilt)

	if err := a.applyInitializers(); err != nil {
		return a.fail(ctx, err), nil
	}
	a.transition(lifecycle.StateInitializersApplied)

	a.transition(lifecycle.StateContextPrepared)
	a.emit(ctx, lifecycle.EventTypeContextInitialized)
	a.transition(lifecycle.StateContextLoaded)
	a.emit(ctx, lifecycle.EventTypeContextLoaded)

	if err := a.refresh(ctx); err != nil {
		return a.fail(ctx, fmt.Errorf("%w: %w", ErrRefresh, err)), nil
	}
	a.transition(lifecycle.StateRefreshed)

	elapsed := a.startup.Started()
	a.transition(lifecycle.StateStarted)
	a.logger.Info(fmt.Sprintf("Started %s in %d ms", bc.Properties.Application.Name, elapsed.Milliseconds()))
	a.emit(ctx, lifecycle.EventTypeStarted)

	a.awaitShutdown(ctx)

	a.transition(lifecycle.StateStopped)
	a.emit(ctx, lifecycle.EventTypeStopped)
	a.logger.Info("Application stopped", "name", bc.Properties.Application.Name)

	return &RunResult{
		State:       lifecycle.StateStopped,
		Bootstrap:   bc,
		Context:     a.appCtx,
		StartupTime: elapsed,
	}, nil
}

func (a *Application) buildBootstrapContext() (*BootstrapContext, error) {
	props := a.bootstrapProps
	if props == nil {
		var err error
		props, err = config.LoadBootstrap(a.bootstrapPath)
		if err != nil {
			return nil, err
		}
	}
	if props.Application.Name == "" {
		props.Application.Name = config.ExecutableName()
	}

	bc := newBootstrapContext(props)
	inits := append(append([]BootstrapInitializer{}, a.bootstrapInitializers...), builtinBootstrapInitializers()...)
	for _, fn := range inits {
		if err := fn(bc); err != nil {
			return nil, err
		}
	}
	return bc, nil
}

func (a *Application) newLoader() *config.Loader {
	opts := []config.LoaderOption{config.WithLogger(a.logger)}
	if kv, ok := beans.TryGet[discovery.KVReader](a.bootstrapCtx.Registry); ok {
		opts = append(opts, config.WithKVReader(kv))
	}
	if a.systemSourceSet {
		opts = append(opts, config.WithSystemSource(a.systemSource))
	}
	return config.NewLoader(a.bootstrapCtx.Properties, opts...)
}

func (a *Application) prepareEnvironment(ctx context.Context) error {
	environment, files, err := a.loader.Load(ctx)
	if err != nil {
		return err
	}
	a.environment = environment
	a.nativeFiles = files
	a.transition(lifecycle.StateEnvironmentBuilt)
	return nil
}

func (a *Application) applyInitializers() error {
	inits := append(builtinContextInitializers(a), a.contextInitializers...)
	for _, fn := range inits {
		if err := fn(a.appCtx); err != nil {
			return fmt.Errorf("%w: %w", ErrInitialize, err)
		}
	}
	return nil
}

// refresh starts the listener in server mode and does nothing otherwise.
func (a *Application) refresh(ctx context.Context) error {
	switch m := a.mode.(type) {
	case NoneMode:
		return nil
	case ServerMode:
		return a.startServer(m)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedMode, m)
	}
}

func (a *Application) startServer(m ServerMode) error {
	port := m.Port
	if port == 0 {
		port = env.GetPropertyDefault(a.environment, "application.port", server.DefaultPort)
	}

	router := server.NewRouter(server.RouterConfig{
		Health:  health.Handler(beans.Get[*health.Aggregator](a.appCtx.Registry)),
		Metrics: a.startup.Handler(),
		Routes:  append(append([]func(chi.Router){}, m.Routes...), a.routes...),
	})

	handle, err := server.Start(server.Config{
		Host:          m.Host,
		Port:          port,
		HandleSignals: !m.IgnoreSignals,
	}, router, a.logger)
	if err != nil {
		return err
	}
	beans.Set(a.appCtx.Registry, handle)

	a.mu.Lock()
	a.handle = handle
	stop := a.stopRequested
	a.mu.Unlock()
	if stop {
		handle.Stop()
	}
	return nil
}

// awaitShutdown blocks until the server handle has shut down. Cancelling
// ctx requests a stop.
func (a *Application) awaitShutdown(ctx context.Context) {
	a.mu.Lock()
	handle := a.handle
	a.mu.Unlock()
	if handle == nil {
		return
	}

	go func() {
		select {
		case <-ctx.Done():
			a.logger.Info("Context cancelled, stopping server")
			handle.Stop()
		case <-handle.Done():
		}
	}()
	handle.Wait()
}

// Stop asks a running server to shut down gracefully. It is safe to call
// before the server has started, from any goroutine, any number of times.
func (a *Application) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.stopRequested = true
	if a.handle != nil {
		a.handle.Stop()
	}
}

func (a *Application) fail(ctx context.Context, err error) *RunResult {
	a.transition(lifecycle.StateFailed)
	a.logger.Error("Application failed", "state", lifecycle.StateFailed, "error", err)
	a.emitFailed(ctx, err)
	return &RunResult{
		State:     lifecycle.StateFailed,
		Err:       err,
		Bootstrap: a.bootstrapCtx,
		Context:   a.appCtx,
	}
}

func (a *Application) closeFileLogger() {
	if a.fileLogger == nil {
		return
	}
	a.logger.Swap(logging.NewConsole(a.bootstrapCtx.Properties.Logger.Level))
	_ = a.fileLogger.Close()
	a.fileLogger = nil
}
