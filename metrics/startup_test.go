package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepsAreRecordedInOrder(t *testing.T) {
	s := NewStartup("demo")
	s.Step("application.starting")
	s.Step("application.environment-prepared")

	steps := s.Steps()
	require.Len(t, steps, 2)
	assert.Equal(t, "application.starting", steps[0].Name)
	assert.Equal(t, "application.environment-prepared", steps[1].Name)
	assert.False(t, steps[1].At.Before(steps[0].At))
}

func TestEventsAndUpGauge(t *testing.T) {
	s := NewStartup("demo")
	s.Event("started")
	s.Event("started")

	assert.InDelta(t, 2, testutil.ToFloat64(s.events.WithLabelValues("started")), 0)

	s.Started()
	assert.InDelta(t, 1, testutil.ToFloat64(s.up), 0)
	s.Stopped()
	assert.InDelta(t, 0, testutil.ToFloat64(s.up), 0)
}

func TestHandlerExposesMetrics(t *testing.T) {
	s := NewStartup("demo")
	s.Step("application.starting")

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `boot_startup_step_seconds{application="demo",step="application.starting"}`)
}
