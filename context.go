package hsm

import "github.com/enetx/g"

// Context is handed to every guard, hook and state event handler of an instance.
// Data is for long-lived values (e.g. user ID, settings) and is serialized.
// Meta is for ephemeral metadata (e.g. timestamps, counters) and is also serialized.
// Signal and Input describe the dispatch in progress and are NOT serialized.
//
// State is the state whose hook is running; for guards and transition hooks it
// is the leaf the transition started from. Peer is the other end of the move:
// the previous leaf for enter hooks, the target for exit hooks. Peer is empty
// while the initial path is entered.
type Context struct {
	Instance *Instance
	Entity   any
	State    State
	Peer     State
	Signal   *Signal
	Input    any
	Data     *g.MapSafe[g.String, any]
	Meta     *g.MapSafe[g.String, any]
}

func newContext(inst *Instance, entity any) *Context {
	return &Context{
		Instance: inst,
		Entity:   entity,
		Data:     g.NewMapSafe[g.String, any](),
		Meta:     g.NewMapSafe[g.String, any](),
	}
}

func (c *Context) at(state, peer State, sig *Signal) {
	c.State = state
	c.Peer = peer
	c.Signal = sig

	if sig != nil {
		c.Input = sig.Input
	} else {
		c.Input = nil
	}
}

// Cargo returns a named value carried by the current signal.
func (c *Context) Cargo(key g.String) g.Option[any] {
	if c.Signal == nil || c.Signal.Cargo == nil {
		return g.None[any]()
	}

	return c.Signal.Cargo.Get(key)
}

// Event returns the name of the current signal, or "" outside a dispatch.
func (c *Context) Event() Event {
	if c.Signal == nil {
		return ""
	}

	return c.Signal.Name
}
