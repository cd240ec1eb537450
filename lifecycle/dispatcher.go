// Package lifecycle defines lifecycle events, the listener capability and
// the sequential dispatcher that fans events out to listeners.
package lifecycle

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/GoCodeAlone/boot/logging"
)

// Dispatcher delivers events to listeners one after another in
// registration order. A failing or panicking listener is logged and
// skipped; it never aborts the dispatch.
type Dispatcher struct {
	mu        sync.RWMutex
	listeners []Listener
	logger    logging.Logger
	metrics   EventMetrics
}

// EventMetrics counts dispatch activity.
type EventMetrics struct {
	Dispatched       int64               `json:"dispatched"`
	Delivered        int64               `json:"delivered"`
	Failures         int64               `json:"failures"`
	FailuresByTarget map[string]int64    `json:"failuresByListener"`
	EventsByType     map[EventType]int64 `json:"eventsByType"`
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher(logger logging.Logger) *Dispatcher {
	return &Dispatcher{
		logger: logger,
		metrics: EventMetrics{
			FailuresByTarget: make(map[string]int64),
			EventsByType:     make(map[EventType]int64),
		},
	}
}

// SetLogger replaces the logger used for failure reports.
func (d *Dispatcher) SetLogger(logger logging.Logger) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.logger = logger
}

// Register appends a listener.
func (d *Dispatcher) Register(listeners ...Listener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, listeners...)
}

// ListenerIDs returns listener IDs in dispatch order.
func (d *Dispatcher) ListenerIDs() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	ids := make([]string, len(d.listeners))
	for i, l := range d.listeners {
		ids[i] = l.ListenerID()
	}
	return ids
}

// Dispatch runs every listener that supports event, in order, waiting for
// each to return before starting the next. Listener errors are logged with
// the listener ID and event type and then dropped.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) {
	d.mu.Lock()
	listeners := slices.Clone(d.listeners)
	d.metrics.Dispatched++
	d.metrics.EventsByType[event.Type()]++
	d.mu.Unlock()

	for _, l := range listeners {
		if !l.Supports(event) {
			continue
		}
		err := d.invoke(ctx, l, event)

		d.mu.Lock()
		d.metrics.Delivered++
		if err != nil {
			d.metrics.Failures++
			d.metrics.FailuresByTarget[l.ListenerID()]++
		}
		logger := d.logger
		d.mu.Unlock()

		if err != nil && logger != nil {
			logger.Error("Listener failed", "listener", l.ListenerID(), "event", event.Type(), "error", err)
		}
	}
}

func (d *Dispatcher) invoke(ctx context.Context, l Listener, event Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrListenerPanic, r)
		}
	}()
	return l.OnEvent(ctx, event)
}

// Metrics returns a snapshot of the dispatch counters.
func (d *Dispatcher) Metrics() EventMetrics {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m := d.metrics
	m.FailuresByTarget = make(map[string]int64, len(d.metrics.FailuresByTarget))
	for k, v := range d.metrics.FailuresByTarget {
		m.FailuresByTarget[k] = v
	}
	m.EventsByType = make(map[EventType]int64, len(d.metrics.EventsByType))
	for k, v := range d.metrics.EventsByType {
		m.EventsByType[k] = v
	}
	return m
}
