package lifecycle

// State is a step of the boot sequence. States advance strictly in
// declaration order; Stopped and Failed are both terminal.
type State int

const (
	StateCreated State = iota
	StateBootstrapContextBuilt
	StateStarting
	StateEnvironmentBuilt
	StateEnvironmentPrepared
	StateApplicationContextBuilt
	StateInitializersApplied
	StateContextPrepared
	StateContextLoaded
	StateRefreshed
	StateStarted
	StateStopped
	StateFailed
)

var stateNames = [...]string{
	StateCreated:                 "Created",
	StateBootstrapContextBuilt:   "BootstrapContextBuilt",
	StateStarting:                "Starting",
	StateEnvironmentBuilt:        "EnvironmentBuilt",
	StateEnvironmentPrepared:     "EnvironmentPrepared",
	StateApplicationContextBuilt: "ApplicationContextBuilt",
	StateInitializersApplied:     "InitializersApplied",
	StateContextPrepared:         "ContextPrepared",
	StateContextLoaded:           "ContextLoaded",
	StateRefreshed:               "Refreshed",
	StateStarted:                 "Started",
	StateStopped:                 "Stopped",
	StateFailed:                  "Failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "Unknown"
	}
	return stateNames[s]
}

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	return s == StateStopped || s == StateFailed
}

// CanTransition reports whether next directly follows s. Failed may follow
// any non-terminal state from Starting on; Stopped only follows
// Started.
func (s State) CanTransition(next State) bool {
	if s.Terminal() {
		return false
	}
	switch next {
	case StateFailed:
		return s >= StateStarting
	case StateStopped:
		return s == StateStarted
	default:
		return next == s+1
	}
}
