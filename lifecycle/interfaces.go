package lifecycle

import (
	"context"
)

// EventType identifies a lifecycle event variant.
type EventType string

// The closed set of lifecycle events, in emission order. ContextInitialized
// is emitted for the context-prepared phase.
const (
	EventTypeStarting            EventType = "starting"
	EventTypeEnvironmentPrepared EventType = "environment_prepared"
	EventTypeContextInitialized  EventType = "context_initialized"
	EventTypeContextLoaded       EventType = "context_loaded"
	EventTypeStarted             EventType = "started"
	EventTypeFailed              EventType = "failed"
	EventTypeStopped             EventType = "stopped"
)

// EventTypes lists every event type in emission order.
func EventTypes() []EventType {
	return []EventType{
		EventTypeStarting,
		EventTypeEnvironmentPrepared,
		EventTypeContextInitialized,
		EventTypeContextLoaded,
		EventTypeStarted,
		EventTypeFailed,
		EventTypeStopped,
	}
}

// Terminal reports whether t ends a run.
func (t EventType) Terminal() bool {
	return t == EventTypeStopped || t == EventTypeFailed
}

// Event is an immutable lifecycle notification. Concrete events carry the
// phase payload.
type Event interface {
	Type() EventType
}

// Listener reacts to the lifecycle events it supports. Listeners run one at
// a time in registration order.
type Listener interface {
	// ListenerID names the listener in logs.
	ListenerID() string

	// Supports decides whether OnEvent is called for event.
	Supports(event Event) bool

	// OnEvent handles the event. A returned error is logged and does not
	// stop the dispatch.
	OnEvent(ctx context.Context, event Event) error
}
