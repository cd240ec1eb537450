// Package metrics records boot-sequence timings in a Prometheus registry
// owned by the application.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Step is one recorded startup phase.
type Step struct {
	Name     string
	At       time.Time
	Duration time.Duration
}

// Startup tracks how long each boot phase took.
type Startup struct {
	registry *prometheus.Registry

	stepSeconds  *prometheus.GaugeVec
	events       *prometheus.CounterVec
	startupTotal prometheus.Gauge
	up           prometheus.Gauge

	mu    sync.Mutex
	began time.Time
	last  time.Time
	steps []Step
}

// NewStartup creates the startup metrics in a fresh registry that also
// carries the Go runtime and process collectors.
func NewStartup(app string) *Startup {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	labels := prometheus.Labels{"application": app}
	now := time.Now()
	return &Startup{
		registry: reg,
		stepSeconds: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name:        "boot_startup_step_seconds",
				Help:        "Time spent reaching each startup step since the previous one",
				ConstLabels: labels,
			},
			[]string{"step"},
		),
		events: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name:        "boot_lifecycle_events_total",
				Help:        "Lifecycle events dispatched by type",
				ConstLabels: labels,
			},
			[]string{"event"},
		),
		startupTotal: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name:        "boot_startup_seconds",
			Help:        "Time from run to the started event",
			ConstLabels: labels,
		}),
		up: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Name:        "boot_application_up",
			Help:        "1 while the application is started",
			ConstLabels: labels,
		}),
		began: now,
		last:  now,
	}
}

// Step records name with the time elapsed since the previous step.
func (s *Startup) Step(name string) Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	step := Step{Name: name, At: now, Duration: now.Sub(s.last)}
	s.last = now
	s.steps = append(s.steps, step)
	s.stepSeconds.WithLabelValues(name).Set(step.Duration.Seconds())
	return step
}

// Event counts a dispatched lifecycle event.
func (s *Startup) Event(eventType string) {
	s.events.WithLabelValues(eventType).Inc()
}

// Started marks the application as up and returns the total startup time.
func (s *Startup) Started() time.Duration {
	s.mu.Lock()
	elapsed := time.Since(s.began)
	s.mu.Unlock()
	s.startupTotal.Set(elapsed.Seconds())
	s.up.Set(1)
	return elapsed
}

// Stopped marks the application as down.
func (s *Startup) Stopped() {
	s.up.Set(0)
}

// Elapsed returns the time since NewStartup.
func (s *Startup) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.began)
}

// Steps returns the recorded steps in order.
func (s *Startup) Steps() []Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Step, len(s.steps))
	copy(out, s.steps)
	return out
}

// Registry exposes the registry for additional collectors.
func (s *Startup) Registry() *prometheus.Registry { return s.registry }

// Handler serves the registry in the Prometheus exposition format.
func (s *Startup) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry})
}
