package boot

import (
	"context"
	"fmt"

	"github.com/GoCodeAlone/boot/lifecycle"
	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
)

// CloudEvent is an alias for the CloudEvents Event type for convenience
type CloudEvent = cloudevents.Event

// EventTypePrefix prefixes the CloudEvents type of every lifecycle event.
const EventTypePrefix = "com.boot.lifecycle."

// EventSource is the CloudEvents source of lifecycle events.
const EventSource = "boot.application"

// Observer receives lifecycle events as CloudEvents. It is the integration
// point for event sinks outside the process.
type Observer interface {
	// OnEvent is called once per lifecycle event, in dispatch order.
	OnEvent(ctx context.Context, event cloudevents.Event) error

	// ObserverID returns a unique identifier for this observer.
	ObserverID() string
}

// FunctionalObserver provides a simple way to create observers using functions.
type FunctionalObserver struct {
	id      string
	handler func(ctx context.Context, event cloudevents.Event) error
}

// NewFunctionalObserver creates an observer that calls handler.
func NewFunctionalObserver(id string, handler func(ctx context.Context, event cloudevents.Event) error) Observer {
	return &FunctionalObserver{id: id, handler: handler}
}

func (f *FunctionalObserver) OnEvent(ctx context.Context, event cloudevents.Event) error {
	return f.handler(ctx, event)
}

func (f *FunctionalObserver) ObserverID() string { return f.id }

// LifecycleEventData is the JSON payload of a lifecycle CloudEvent.
type LifecycleEventData struct {
	Application string   `json:"application"`
	Profiles    []string `json:"profiles,omitempty"`
	Sources     []string `json:"sources,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// NewLifecycleCloudEvent converts ev to a CloudEvent.
func NewLifecycleCloudEvent(ev *ApplicationEvent) (cloudevents.Event, error) {
	ce := cloudevents.NewEvent()
	ce.SetID(eventID(ev))
	ce.SetSource(EventSource)
	ce.SetType(EventTypePrefix + string(ev.Kind))
	ce.SetTime(ev.Time)
	ce.SetSubject(ev.Name)

	data := LifecycleEventData{Application: ev.Name}
	if ev.Environment != nil {
		data.Profiles = ev.Environment.ActiveProfiles()
		data.Sources = ev.Environment.SourceNames()
	}
	if ev.Err != nil {
		data.Error = ev.Err.Error()
	}
	if err := ce.SetData(cloudevents.ApplicationJSON, data); err != nil {
		return ce, fmt.Errorf("failed to encode lifecycle event: %w", err)
	}
	if err := ce.Validate(); err != nil {
		return ce, fmt.Errorf("CloudEvent validation failed: %w", err)
	}
	return ce, nil
}

func eventID(ev *ApplicationEvent) string {
	if ev.ID != "" {
		return ev.ID
	}
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return id.String()
}

// newObserverBridge adapts an Observer to a lifecycle listener.
func newObserverBridge(observer Observer) lifecycle.Listener {
	return lifecycle.NewListener("observer:"+observer.ObserverID(), func(ctx context.Context, e lifecycle.Event) error {
		ev, ok := AsApplicationEvent(e)
		if !ok {
			return nil
		}
		ce, err := NewLifecycleCloudEvent(ev)
		if err != nil {
			return err
		}
		return observer.OnEvent(ctx, ce)
	})
}
