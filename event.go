package boot

import (
	"time"

	"github.com/GoCodeAlone/boot/config"
	"github.com/GoCodeAlone/boot/env"
	"github.com/GoCodeAlone/boot/lifecycle"
	"github.com/google/uuid"
)

// ApplicationEvent is the payload of every lifecycle event. Fields become
// available as the run progresses: Bootstrap from Starting on, Environment
// from EnvironmentPrepared on, Context from ContextInitialized on. Err is
// set only on Failed.
type ApplicationEvent struct {
	ID   string
	Kind lifecycle.EventType
	Time time.Time

	Name             string
	Bootstrap        *config.BootstrapProperties
	BootstrapContext *BootstrapContext
	Environment      *env.Environment
	Context          *ApplicationContext
	Err              error
}

// Type implements lifecycle.Event.
func (e *ApplicationEvent) Type() lifecycle.EventType { return e.Kind }

func newEvent(kind lifecycle.EventType, a *Application) *ApplicationEvent {
	ev := &ApplicationEvent{
		ID:   uuid.NewString(),
		Kind: kind,
		Time: time.Now(),
	}
	if a.bootstrapCtx != nil {
		ev.BootstrapContext = a.bootstrapCtx
		ev.Bootstrap = a.bootstrapCtx.Properties
		ev.Name = a.bootstrapCtx.Properties.Application.Name
	}
	if a.environment != nil {
		ev.Environment = a.environment
	}
	if a.appCtx != nil {
		ev.Context = a.appCtx
	}
	return ev
}

// AsApplicationEvent unwraps e.
func AsApplicationEvent(e lifecycle.Event) (*ApplicationEvent, bool) {
	ae, ok := e.(*ApplicationEvent)
	return ae, ok
}
