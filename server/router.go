package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Paths served by every application router.
const (
	HealthPath  = "/actuator/health"
	MetricsPath = "/metrics"
)

// RouterConfig supplies the built-in endpoints and user routes.
type RouterConfig struct {
	Health  http.Handler
	Metrics http.Handler
	Routes  []func(chi.Router)
}

// NewRouter builds the chi router: request IDs, panic recovery and a
// request timeout, then the actuator endpoints and user routes.
func NewRouter(cfg RouterConfig) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))

	health := cfg.Health
	if health == nil {
		health = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("Ok"))
		})
	}
	r.Method(http.MethodGet, HealthPath, health)
	if cfg.Metrics != nil {
		r.Method(http.MethodGet, MetricsPath, cfg.Metrics)
	}
	for _, route := range cfg.Routes {
		route(r)
	}
	return r
}
