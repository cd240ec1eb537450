package boot

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/GoCodeAlone/boot/beans"
	"github.com/GoCodeAlone/boot/cache"
	"github.com/GoCodeAlone/boot/config"
	"github.com/GoCodeAlone/boot/discovery"
	"github.com/GoCodeAlone/boot/env"
	"github.com/GoCodeAlone/boot/health"
	"github.com/GoCodeAlone/boot/lifecycle"
	"github.com/GoCodeAlone/boot/logging"
	"github.com/GoCodeAlone/boot/scheduler"
	"github.com/GoCodeAlone/boot/server"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	errListenerBoom = errors.New("listener boom")
	errInitBoom     = errors.New("initializer boom")
	errRegistryDown = errors.New("registry down")
)

// eventRecorder collects event types in dispatch order.
type eventRecorder struct {
	mu     sync.Mutex
	events []lifecycle.EventType
}

func (r *eventRecorder) listener() lifecycle.Listener {
	return lifecycle.NewListener("recorder", func(_ context.Context, e lifecycle.Event) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.events = append(r.events, e.Type())
		return nil
	})
}

func (r *eventRecorder) Events() []lifecycle.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]lifecycle.EventType(nil), r.events...)
}

var successSequence = []lifecycle.EventType{
	lifecycle.EventTypeStarting,
	lifecycle.EventTypeEnvironmentPrepared,
	lifecycle.EventTypeContextInitialized,
	lifecycle.EventTypeContextLoaded,
	lifecycle.EventTypeStarted,
	lifecycle.EventTypeStopped,
}

func testProps(t *testing.T) *config.BootstrapProperties {
	t.Helper()
	props := config.DefaultBootstrap()
	props.Application.Name = "demo"
	props.Application.Config.Locations = []string{t.TempDir()}
	return props
}

func newTestApp(t *testing.T, props *config.BootstrapProperties, opts ...Option) *Application {
	t.Helper()
	base := []Option{
		WithBootstrapProperties(props),
		WithLogger(logging.Nop()),
		WithBanner(false, nil),
		WithSystemEnvironment(nil),
	}
	app, err := NewApplication(append(base, opts...)...)
	require.NoError(t, err)
	return app
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestRunNoneMode(t *testing.T) {
	rec := &eventRecorder{}
	app := newTestApp(t, testProps(t), WithMode(NoneMode{}), WithListener(rec.listener()))

	result, err := app.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, lifecycle.StateStopped, result.State)
	assert.False(t, result.Failed())
	assert.NoError(t, result.Err)
	assert.Equal(t, lifecycle.StateStopped, app.State())
	assert.Equal(t, successSequence, rec.Events())
	assert.True(t, result.StartupTime > 0)

	reg := result.Context.Registry
	assert.Equal(t, ContextID{ID: "demo"}, beans.Get[ContextID](reg))
	assert.True(t, beans.Has[*health.Aggregator](reg))
	assert.True(t, beans.Has[*scheduler.Scheduler](reg))
	assert.True(t, beans.Has[*cache.Manager](reg))
	assert.False(t, beans.Has[*server.Handle](reg))

	// bootstrap beans are copied into the application registry
	assert.Same(t, result.Bootstrap.Properties, beans.Get[*config.BootstrapProperties](reg))
	assert.Same(t, result.Context.Environment, beans.Get[*env.Environment](reg))
}

func TestRunTwiceIsRejected(t *testing.T) {
	rec := &eventRecorder{}
	app := newTestApp(t, testProps(t), WithMode(NoneMode{}), WithListener(rec.listener()))

	_, err := app.Run(context.Background())
	require.NoError(t, err)

	result, err := app.Run(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyRun)
	assert.Nil(t, result)
	assert.Len(t, rec.Events(), len(successSequence))
}

func TestRunServerMode(t *testing.T) {
	rec := &eventRecorder{}
	port := freePort(t)
	var (
		healthStatus int
		healthBody   string
		metricsBody  string
		helloBody    string
	)

	var app *Application
	client := lifecycle.NewListener("http-client", func(_ context.Context, e lifecycle.Event) error {
		ev, _ := AsApplicationEvent(e)
		handle, ok := ev.Context.Server()
		if !ok {
			return errors.New("no server handle")
		}
		base := "http://" + handle.Addr().String()

		resp, err := http.Get(base + server.HealthPath)
		if err != nil {
			return err
		}
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		healthStatus, healthBody = resp.StatusCode, string(body)

		resp, err = http.Get(base + server.MetricsPath)
		if err != nil {
			return err
		}
		body, _ = io.ReadAll(resp.Body)
		resp.Body.Close()
		metricsBody = string(body)

		resp, err = http.Get(base + "/hello")
		if err != nil {
			return err
		}
		body, _ = io.ReadAll(resp.Body)
		resp.Body.Close()
		helloBody = string(body)

		app.Stop()
		return nil
	}, lifecycle.EventTypeStarted)

	app = newTestApp(t, testProps(t),
		WithMode(ServerMode{Host: "127.0.0.1", Port: port, IgnoreSignals: true}),
		WithRoutes(func(r chi.Router) {
			r.Get("/hello", func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("hello")) })
		}),
		WithListener(rec.listener(), client),
	)

	result, err := app.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateStopped, result.State)
	assert.Equal(t, successSequence, rec.Events())

	assert.Equal(t, http.StatusOK, healthStatus)
	assert.Contains(t, healthBody, `"status":"UP"`)
	assert.Contains(t, healthBody, PingCheck)
	assert.Contains(t, metricsBody, "boot_startup_step_seconds")
	assert.Equal(t, "hello", helloBody)

	handle, ok := result.Context.Server()
	require.True(t, ok)
	assert.Equal(t, port, handle.Port())
	assert.Equal(t, server.StateStopped, handle.State())
	assert.Equal(t, "stop requested", handle.Cause())
}

func TestHealthDownReturns503(t *testing.T) {
	port := freePort(t)
	var status int
	var app *Application
	client := lifecycle.NewListener("http-client", func(_ context.Context, e lifecycle.Event) error {
		defer app.Stop()
		resp, err := http.Get("http://127.0.0.1:" + strconv.Itoa(port) + server.HealthPath)
		if err != nil {
			return err
		}
		resp.Body.Close()
		status = resp.StatusCode
		return nil
	}, lifecycle.EventTypeStarted)

	app = newTestApp(t, testProps(t),
		WithMode(ServerMode{Host: "127.0.0.1", Port: port, IgnoreSignals: true}),
		WithHealthCheck(health.NewCheck("db", func(context.Context) error { return errors.New("unreachable") })),
		WithListener(client),
	)
	_, err := app.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, status)
}

func TestStopBeforeRunStopsServerImmediately(t *testing.T) {
	rec := &eventRecorder{}
	app := newTestApp(t, testProps(t),
		WithMode(ServerMode{Host: "127.0.0.1", Port: freePort(t), IgnoreSignals: true}),
		WithListener(rec.listener()),
	)
	app.Stop()

	result, err := app.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateStopped, result.State)
	assert.Equal(t, successSequence, rec.Events())
}

func TestContextCancellationStopsServer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &eventRecorder{}
	app := newTestApp(t, testProps(t),
		WithMode(ServerMode{Host: "127.0.0.1", Port: freePort(t), IgnoreSignals: true}),
		WithListener(rec.listener(), lifecycle.NewListener("cancel", func(context.Context, lifecycle.Event) error {
			cancel()
			return nil
		}, lifecycle.EventTypeStarted)),
	)

	done := make(chan *RunResult, 1)
	go func() {
		result, _ := app.Run(ctx)
		done <- result
	}()

	select {
	case result := <-done:
		require.NotNil(t, result)
		assert.Equal(t, lifecycle.StateStopped, result.State)
		assert.Equal(t, successSequence, rec.Events())
	case <-time.After(15 * time.Second):
		t.Fatal("run did not stop after context cancellation")
	}
}

func TestRefreshFailureEndsInFailed(t *testing.T) {
	occupied, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer occupied.Close()
	port := occupied.Addr().(*net.TCPAddr).Port

	rec := &eventRecorder{}
	app := newTestApp(t, testProps(t),
		WithMode(ServerMode{Host: "127.0.0.1", Port: port, IgnoreSignals: true}),
		WithListener(rec.listener()),
	)

	result, err := app.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Failed())
	assert.Equal(t, lifecycle.StateFailed, app.State())
	assert.ErrorIs(t, result.Err, ErrRefresh)
	assert.ErrorIs(t, result.Err, server.ErrBind)
	assert.Equal(t, []lifecycle.EventType{
		lifecycle.EventTypeStarting,
		lifecycle.EventTypeEnvironmentPrepared,
		lifecycle.EventTypeContextInitialized,
		lifecycle.EventTypeContextLoaded,
		lifecycle.EventTypeFailed,
	}, rec.Events())
}

func TestApplicationPortFromConfigFile(t *testing.T) {
	props := testProps(t)
	port := freePort(t)
	writeFile(t, filepath.Join(props.Application.Config.Locations[0], "config.toml"),
		"[application]\nport = "+strconv.Itoa(port)+"\n")

	var bound int
	var app *Application
	app = newTestApp(t, props,
		WithMode(ServerMode{Host: "127.0.0.1", IgnoreSignals: true}),
		WithListener(lifecycle.NewListener("port-capture", func(_ context.Context, e lifecycle.Event) error {
			ev, _ := AsApplicationEvent(e)
			if h, ok := ev.Context.Server(); ok {
				bound = h.Port()
			}
			app.Stop()
			return nil
		}, lifecycle.EventTypeStarted)),
	)

	result, err := app.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateStopped, result.State)
	assert.Equal(t, port, bound)
}

func TestInitializerFailureEndsInFailed(t *testing.T) {
	rec := &eventRecorder{}
	app := newTestApp(t, testProps(t),
		WithMode(NoneMode{}),
		WithListener(rec.listener()),
		WithContextInitializer(func(*ApplicationContext) error { return errInitBoom }),
	)

	result, err := app.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, result.Failed())
	assert.ErrorIs(t, result.Err, ErrInitialize)
	assert.ErrorIs(t, result.Err, errInitBoom)
	assert.Equal(t, []lifecycle.EventType{
		lifecycle.EventTypeStarting,
		lifecycle.EventTypeEnvironmentPrepared,
		lifecycle.EventTypeFailed,
	}, rec.Events())
}

func TestMalformedBootstrapFileEmitsNoEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bootstrap.toml")
	writeFile(t, path, "[application\nname = ")

	rec := &eventRecorder{}
	app, err := NewApplication(
		WithBootstrapFile(path),
		WithLogger(logging.Nop()),
		WithBanner(false, nil),
		WithMode(NoneMode{}),
		WithListener(rec.listener()),
	)
	require.NoError(t, err)

	result, err := app.Run(context.Background())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrBootstrap)
	assert.ErrorIs(t, err, config.ErrBootstrapParse)
	assert.Empty(t, rec.Events())
	assert.Equal(t, lifecycle.StateCreated, app.State())
}

func TestMalformedConfigFileEmitsNoEvents(t *testing.T) {
	props := testProps(t)
	writeFile(t, filepath.Join(props.Application.Config.Locations[0], "config.toml"), "port = = 1")

	rec := &eventRecorder{}
	app := newTestApp(t, props, WithMode(NoneMode{}), WithListener(rec.listener()))

	result, err := app.Run(context.Background())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrBootstrap)
	assert.ErrorIs(t, err, config.ErrNativeConfig)
	assert.Empty(t, rec.Events())
}

func TestNoActiveProfilesIsFatal(t *testing.T) {
	props := testProps(t)
	props.Application.Config.Activate.Profiles = nil

	rec := &eventRecorder{}
	app := newTestApp(t, props, WithMode(NoneMode{}), WithListener(rec.listener()))

	_, err := app.Run(context.Background())
	assert.ErrorIs(t, err, config.ErrNoActiveProfiles)
	assert.Empty(t, rec.Events())
}

func TestBootstrapInitializerErrorIsFatal(t *testing.T) {
	rec := &eventRecorder{}
	app := newTestApp(t, testProps(t),
		WithMode(NoneMode{}),
		WithListener(rec.listener()),
		WithBootstrapInitializer(func(*BootstrapContext) error { return errInitBoom }),
	)

	_, err := app.Run(context.Background())
	assert.ErrorIs(t, err, ErrBootstrap)
	assert.ErrorIs(t, err, errInitBoom)
	assert.Empty(t, rec.Events())
}

func TestListenerFailuresAreIsolated(t *testing.T) {
	var order []string
	mark := func(id string, err error) lifecycle.Listener {
		return lifecycle.NewListener(id, func(context.Context, lifecycle.Event) error {
			order = append(order, id)
			return err
		}, lifecycle.EventTypeStarted)
	}
	panicking := lifecycle.NewListener("l3", func(context.Context, lifecycle.Event) error {
		order = append(order, "l3")
		panic("boom")
	}, lifecycle.EventTypeStarted)

	app := newTestApp(t, testProps(t),
		WithMode(NoneMode{}),
		WithListener(mark("l1", nil), mark("l2", errListenerBoom), panicking, mark("l4", nil)),
	)

	result, err := app.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateStopped, result.State)
	assert.Equal(t, []string{"l1", "l2", "l3", "l4"}, order)

	m := app.Dispatcher().Metrics()
	assert.Equal(t, int64(1), m.FailuresByTarget["l2"])
	assert.Equal(t, int64(1), m.FailuresByTarget["l3"])
}

func TestListenerOrder(t *testing.T) {
	app := newTestApp(t, testProps(t), WithListener(lifecycle.NewListener("user", nil)))
	assert.Equal(t, []string{
		LoggingListenerID,
		StartingLogListenerID,
		MetricsListenerID,
		ConfigWatchListenerID,
		BannerListenerID,
		SchedulerListenerID,
		RegistryListenerID,
		DeRegistryListenerID,
		LoggingCleanListenerID,
		"user",
	}, app.ListenerIDs())
}

func TestEventPayloadGrowsWithPhases(t *testing.T) {
	seen := map[lifecycle.EventType]*ApplicationEvent{}
	app := newTestApp(t, testProps(t),
		WithMode(NoneMode{}),
		WithListener(lifecycle.NewListener("payload", func(_ context.Context, e lifecycle.Event) error {
			ev, _ := AsApplicationEvent(e)
			seen[e.Type()] = ev
			return nil
		})),
	)
	_, err := app.Run(context.Background())
	require.NoError(t, err)

	starting := seen[lifecycle.EventTypeStarting]
	require.NotNil(t, starting)
	assert.Equal(t, "demo", starting.Name)
	assert.NotNil(t, starting.BootstrapContext)
	assert.Nil(t, starting.Environment)
	assert.Nil(t, starting.Context)

	prepared := seen[lifecycle.EventTypeEnvironmentPrepared]
	require.NotNil(t, prepared)
	assert.NotNil(t, prepared.Environment)
	assert.Nil(t, prepared.Context)

	loaded := seen[lifecycle.EventTypeContextLoaded]
	require.NotNil(t, loaded)
	assert.NotNil(t, loaded.Context)
	assert.NotEqual(t, starting.ID, loaded.ID)
}

func TestPropertyPrecedence(t *testing.T) {
	props := testProps(t)
	writeFile(t, filepath.Join(props.Application.Config.Locations[0], "config.toml"), `
[application]
name = "from-file"

[greeting]
text = "file"
`)
	system := env.NewEnvPropertySource(env.SystemEnvironmentName, []string{
		"GREETING_TEXT=env",
		"ONLY_ENV=set",
	})

	app := newTestApp(t, props, WithMode(NoneMode{}), WithSystemEnvironment(system))
	result, err := app.Run(context.Background())
	require.NoError(t, err)

	e := result.Context.Environment
	name, _ := env.GetProperty[string](e, "application.name")
	assert.Equal(t, "demo", name)
	text, _ := env.GetProperty[string](e, "greeting.text")
	assert.Equal(t, "file", text)
	only, _ := env.GetProperty[string](e, "only.env")
	assert.Equal(t, "set", only)

	names := e.SourceNames()
	assert.Equal(t, config.DefaultsSourceName, names[0])
	assert.Equal(t, env.SystemEnvironmentName, names[len(names)-1])
}

func TestRemoteConfigFromKVReader(t *testing.T) {
	props := testProps(t)
	props.Application.Cloud.Config.Enabled = true

	mem := discovery.NewMemory()
	mem.Put(config.RemoteKey(env.DefaultProfile, "demo"), []byte("[feature]\nflag = true\n"))

	app := newTestApp(t, props,
		WithMode(NoneMode{}),
		WithBootstrapInitializer(func(bc *BootstrapContext) error {
			beans.Set[discovery.KVReader](bc.Registry, mem)
			return nil
		}),
	)
	result, err := app.Run(context.Background())
	require.NoError(t, err)

	flag, ok := env.GetProperty[bool](result.Context.Environment, "feature.flag")
	assert.True(t, ok)
	assert.True(t, flag)
}

func TestRemoteConfigFailureIsNotFatal(t *testing.T) {
	props := testProps(t)
	props.Application.Cloud.Config.Enabled = true

	mem := discovery.NewMemory()
	mem.KVErr = errRegistryDown

	app := newTestApp(t, props,
		WithMode(NoneMode{}),
		WithBootstrapInitializer(func(bc *BootstrapContext) error {
			beans.Set[discovery.KVReader](bc.Registry, mem)
			return nil
		}),
	)
	result, err := app.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateStopped, result.State)
}

func TestDiscoveryRegistration(t *testing.T) {
	props := testProps(t)
	props.Application.Port = 9000
	props.Application.Cloud.Discovery.Host.IP = "10.0.0.7"

	mem := discovery.NewMemory()
	var duringRun []discovery.ServiceInstance
	var registration *discovery.Registration

	app := newTestApp(t, props,
		WithMode(NoneMode{}),
		WithBootstrapInitializer(func(bc *BootstrapContext) error {
			beans.Set[discovery.Registry](bc.Registry, mem)
			return nil
		}),
		WithListener(lifecycle.NewListener("check", func(_ context.Context, e lifecycle.Event) error {
			ev, _ := AsApplicationEvent(e)
			duringRun = mem.Instances()
			registration, _ = beans.TryGet[*discovery.Registration](ev.Context.Registry)
			return nil
		}, lifecycle.EventTypeStarted)),
	)

	result, err := app.Run(context.Background())
	require.NoError(t, err)

	require.Len(t, duringRun, 1)
	inst := duringRun[0]
	assert.Equal(t, "demo@10.0.0.7:9000", inst.ID)
	assert.Equal(t, "http://10.0.0.7:9000/actuator/health", inst.Health.URL)
	assert.Equal(t, "30s", inst.Health.Interval)
	require.NotNil(t, registration)
	assert.Equal(t, inst, registration.Instance)

	assert.Empty(t, mem.Instances())
	assert.False(t, beans.Has[*discovery.Registration](result.Context.Registry))
}

func TestDiscoveryDeregistrationFailureIsLogged(t *testing.T) {
	props := testProps(t)
	props.Application.Port = 9000

	mem := discovery.NewMemory()
	mem.DeregisterErr = errRegistryDown

	app := newTestApp(t, props,
		WithMode(NoneMode{}),
		WithBootstrapInitializer(func(bc *BootstrapContext) error {
			beans.Set[discovery.Registry](bc.Registry, mem)
			return nil
		}),
	)

	result, err := app.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateStopped, result.State)
	assert.Len(t, mem.Instances(), 1)
	assert.True(t, beans.Has[*discovery.Registration](result.Context.Registry))
	assert.Equal(t, int64(1), app.Dispatcher().Metrics().FailuresByTarget[DeRegistryListenerID])
}

func TestDiscoveryRegistrationFailureIsLogged(t *testing.T) {
	mem := discovery.NewMemory()
	mem.RegisterErr = errRegistryDown

	app := newTestApp(t, testProps(t),
		WithMode(NoneMode{}),
		WithBootstrapInitializer(func(bc *BootstrapContext) error {
			beans.Set[discovery.Registry](bc.Registry, mem)
			return nil
		}),
	)
	result, err := app.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateStopped, result.State)
	assert.False(t, beans.Has[*discovery.Registration](result.Context.Registry))
}

func TestConsulClientRegisteredWhenDiscoveryConfigured(t *testing.T) {
	props := testProps(t)
	props.Application.Cloud.Discovery.Server.Address = "127.0.0.1:1"

	var reg discovery.Registry
	app := newTestApp(t, props,
		WithMode(NoneMode{}),
		WithContextInitializer(func(ac *ApplicationContext) error {
			reg, _ = beans.TryGet[discovery.Registry](ac.Registry)
			return nil
		}),
	)
	result, err := app.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, lifecycle.StateStopped, result.State)
	assert.IsType(t, &discovery.Consul{}, reg)
}

func TestObserverReceivesCloudEvents(t *testing.T) {
	var mu sync.Mutex
	var types []string
	var failedData LifecycleEventData

	observer := NewFunctionalObserver("sink", func(_ context.Context, ce cloudevents.Event) error {
		mu.Lock()
		defer mu.Unlock()
		types = append(types, ce.Type())
		if ce.Type() == EventTypePrefix+string(lifecycle.EventTypeFailed) {
			return ce.DataAs(&failedData)
		}
		return nil
	})

	app := newTestApp(t, testProps(t),
		WithMode(NoneMode{}),
		WithObserver(observer),
		WithContextInitializer(func(*ApplicationContext) error { return errInitBoom }),
	)
	_, err := app.Run(context.Background())
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"com.boot.lifecycle.starting",
		"com.boot.lifecycle.environment_prepared",
		"com.boot.lifecycle.failed",
	}, types)
	assert.Equal(t, "demo", failedData.Application)
	assert.Contains(t, failedData.Error, errInitBoom.Error())
}

func TestBannerIsPrinted(t *testing.T) {
	var out strings.Builder
	app := newTestApp(t, testProps(t), WithMode(NoneMode{}), WithBanner(true, &out))
	_, err := app.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, out.String(), "demo")
	assert.Contains(t, out.String(), "none")
}

func TestConfiguredLoggerWritesFile(t *testing.T) {
	props := testProps(t)
	props.Logger.Enabled = true
	props.Logger.Dir = t.TempDir()
	props.Logger.File = "demo"

	app, err := NewApplication(
		WithBootstrapProperties(props),
		WithBanner(false, nil),
		WithSystemEnvironment(nil),
		WithMode(NoneMode{}),
	)
	require.NoError(t, err)

	_, err = app.Run(context.Background())
	require.NoError(t, err)

	data, err := os.ReadFile(logging.FilePath(props.Logger, time.Now()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Started demo in")
}

func TestSchedulerRunsBetweenStartedAndStopped(t *testing.T) {
	var running, afterStop bool
	var sched *scheduler.Scheduler
	app := newTestApp(t, testProps(t),
		WithMode(NoneMode{}),
		WithListener(lifecycle.NewListener("check", func(_ context.Context, e lifecycle.Event) error {
			ev, _ := AsApplicationEvent(e)
			sched = beans.Get[*scheduler.Scheduler](ev.Context.Registry)
			running = sched.IsRunning()
			return nil
		}, lifecycle.EventTypeStarted)),
	)
	_, err := app.Run(context.Background())
	require.NoError(t, err)
	afterStop = sched.IsRunning()

	assert.True(t, running)
	assert.False(t, afterStop)
}

func TestOptionValidation(t *testing.T) {
	_, err := NewApplication(WithMode(nil))
	assert.ErrorIs(t, err, ErrModeNil)

	_, err = NewApplication(WithLogger(nil))
	assert.ErrorIs(t, err, ErrLoggerNil)

	_, err = NewApplication(WithListener(nil))
	assert.ErrorIs(t, err, ErrListenerNil)

	_, err = NewApplication(WithContextInitializer(nil))
	assert.ErrorIs(t, err, ErrInitializerNil)

	_, err = NewApplication(WithObserver(nil))
	assert.ErrorIs(t, err, ErrObserverNil)

	_, err = NewApplication(WithHealthCheck(nil))
	assert.ErrorIs(t, err, ErrCheckNil)

	app, err := NewApplication(WithMode(&NoneMode{}))
	require.NoError(t, err)
	assert.Equal(t, "none", ModeName(app.mode))

	app, err = NewApplication()
	require.NoError(t, err)
	assert.Equal(t, "server", ModeName(app.mode))
}

func TestBootstrapAggregatorIsKept(t *testing.T) {
	agg := health.NewAggregator(0)
	require.NoError(t, agg.RegisterCheck(health.NewCheck("disk", func(context.Context) error { return nil })))

	app := newTestApp(t, testProps(t),
		WithMode(NoneMode{}),
		WithBootstrapInitializer(func(bc *BootstrapContext) error {
			beans.Set(bc.Registry, agg)
			return nil
		}),
		WithHealthCheck(health.NewCheck("db", func(context.Context) error { return nil })),
	)

	result, err := app.Run(context.Background())
	require.NoError(t, err)
	require.False(t, result.Failed())

	got := beans.Get[*health.Aggregator](result.Context.Registry)
	assert.Same(t, agg, got)
	assert.ElementsMatch(t, []string{"disk", PingCheck, "db"}, got.Names())
}
