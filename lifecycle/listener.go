package lifecycle

import (
	"context"
	"slices"
)

// FuncListener adapts a function to the Listener interface.
type FuncListener struct {
	id        string
	predicate func(Event) bool
	handler   func(ctx context.Context, event Event) error
}

// NewListener creates a listener for the given event types. With no types
// it receives every event.
func NewListener(id string, handler func(ctx context.Context, event Event) error, types ...EventType) *FuncListener {
	types = slices.Clone(types)
	return &FuncListener{
		id: id,
		predicate: func(e Event) bool {
			return len(types) == 0 || slices.Contains(types, e.Type())
		},
		handler: handler,
	}
}

// NewPredicateListener creates a listener gated by an arbitrary predicate.
func NewPredicateListener(id string, predicate func(Event) bool, handler func(ctx context.Context, event Event) error) *FuncListener {
	return &FuncListener{id: id, predicate: predicate, handler: handler}
}

func (l *FuncListener) ListenerID() string { return l.id }

func (l *FuncListener) Supports(event Event) bool {
	return l.predicate == nil || l.predicate(event)
}

func (l *FuncListener) OnEvent(ctx context.Context, event Event) error {
	if l.handler == nil {
		return nil
	}
	return l.handler(ctx, event)
}
