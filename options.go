package hsm

import (
	"log/slog"

	"github.com/enetx/g"
)

// MachineOption configures a Machine at construction.
type MachineOption func(*Machine)

// WithSeparator sets the string joining parent and child names. Default ".".
func WithSeparator(sep string) MachineOption {
	return func(m *Machine) {
		if sep != "" {
			m.base.reg.sep = State(sep)
		}
	}
}

// WithHistorySize sets the capacity of each instance's history stack.
func WithHistorySize(n int) MachineOption {
	return func(m *Machine) {
		if n > 0 {
			m.historySize = n
		}
	}
}

// WithLogger sets the logger used for engine diagnostics. Default discards.
func WithLogger(l *slog.Logger) MachineOption {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithObserver adds an observer notified after every dispatch.
func WithObserver(o Observer) MachineOption {
	return func(m *Machine) {
		if o != nil {
			m.observers.Push(o)
		}
	}
}

// WithStateChanged registers fn to be called each time an instance's current
// state changes while a transition enters states.
func WithStateChanged(fn func(inst *Instance, state State)) MachineOption {
	return func(m *Machine) {
		if fn != nil {
			m.stateChanged.Push(fn)
		}
	}
}

type stateConfig struct {
	parent   State
	initial  bool
	force    bool
	onEnter  g.Slice[Callback]
	onExit   g.Slice[Callback]
	handlers g.Map[Event, g.Slice[Callback]]
	behavior Behavior
}

func newStateConfig(opts []StateOption) *stateConfig {
	cfg := &stateConfig{handlers: g.NewMap[Event, g.Slice[Callback]]()}
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// StateOption configures a state at registration.
type StateOption func(*stateConfig)

// Parent nests the state under the already registered state p.
func Parent(p State) StateOption { return func(c *stateConfig) { c.parent = p } }

// Initial makes the state the initial child of its parent, or the machine's
// initial state when it has no parent.
func Initial() StateOption { return func(c *stateConfig) { c.initial = true } }

// Force replaces an existing registration of the same qualified name. Children
// and the initial child of the replaced state are kept.
func Force() StateOption { return func(c *stateConfig) { c.force = true } }

// OnEnter adds a hook run when the state is entered.
func OnEnter(cb Callback) StateOption {
	return func(c *stateConfig) {
		if cb != nil {
			c.onEnter.Push(cb)
		}
	}
}

// OnExit adds a hook run when the state is exited.
func OnExit(cb Callback) StateOption {
	return func(c *stateConfig) {
		if cb != nil {
			c.onExit.Push(cb)
		}
	}
}

// On adds a handler run when the state, or an active descendant that does not
// handle the event itself, receives the event. Handlers run before the
// transition lookup.
func On(event Event, cb Callback) StateOption {
	return func(c *stateConfig) {
		if cb == nil {
			return
		}

		c.handlers.Entry(event).
			AndModify(func(s *g.Slice[Callback]) { s.Push(cb) }).
			OrInsert(g.SliceOf(cb))
	}
}

// WithBehavior binds b to the state.
func WithBehavior(b Behavior) StateOption { return func(c *stateConfig) { c.behavior = b } }

type transitionConfig struct {
	guards g.Slice[Guard]
	before Callback
	action Callback
	after  Callback
}

func newTransitionConfig(opts []TransitionOption) *transitionConfig {
	cfg := new(transitionConfig)
	for _, opt := range opts {
		opt(cfg)
	}

	return cfg
}

// TransitionOption configures a transition rule at registration.
type TransitionOption func(*transitionConfig)

// Before sets a hook run after the guards pass and before any state is exited.
func Before(cb Callback) TransitionOption { return func(c *transitionConfig) { c.before = cb } }

// Action sets a hook run after states are exited and before states are entered.
func Action(cb Callback) TransitionOption { return func(c *transitionConfig) { c.action = cb } }

// After sets a hook run once the target has been entered.
func After(cb Callback) TransitionOption { return func(c *transitionConfig) { c.after = cb } }
