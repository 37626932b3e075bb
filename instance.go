package hsm

import (
	"time"

	"github.com/enetx/g"
)

// Instance drives one entity through a Machine. An Instance is not safe for
// concurrent use; wrap it with Sync when several goroutines share it.
type Instance struct {
	machine     *Machine
	overlay     *layer
	entity      any
	current     State
	history     *History
	ctx         *Context
	dispatching bool
}

// NewInstance seals the machine and returns an instance that has entered the
// initial state and the initial children below it. Enter hooks run with an
// empty Context.Peer.
func (m *Machine) NewInstance(entity any) (*Instance, error) {
	m.sealed.Store(true)

	if m.Initial() == "" {
		return nil, ErrNoInitialState
	}

	inst := &Instance{
		machine: m,
		entity:  entity,
		history: NewHistory(m.historySize),
	}
	inst.ctx = newContext(inst, entity)

	if err := inst.start(NewSignal("init")); err != nil {
		return nil, err
	}

	return inst, nil
}

func (i *Instance) view() view {
	if i.overlay == nil {
		return i.machine.view()
	}

	return view{i.overlay, i.machine.base}
}

func (i *Instance) start(sig *Signal) error {
	return i.record(sig, func(v view) (Kind, error) {
		target, err := v.leaf(v.initial())
		if err != nil {
			return KindInit, err
		}

		return KindInit, i.transit(v, nil, sig, target, false)
	})
}

// record runs a state-changing operation and reports it to the machine's observers.
func (i *Instance) record(sig *Signal, fn func(v view) (Kind, error)) error {
	if i.dispatching {
		return ErrReentrantDispatch
	}

	i.dispatching = true
	defer func() { i.dispatching = false }()

	start := time.Now()
	from := i.current
	kind, err := fn(i.view())

	i.machine.report(DispatchRecord{
		Machine:  i.machine.name,
		Event:    sig.Name,
		From:     from,
		To:       i.current,
		Kind:     kind,
		Duration: time.Since(start),
		Err:      err,
	})

	return err
}

// Trigger dispatches event with an optional input.
func (i *Instance) Trigger(event Event, input ...any) error {
	return i.Dispatch(NewSignal(event, input...))
}

// Dispatch delivers sig to the instance. State event handlers run first, from
// the leaf up while the signal propagates and no handler has taken it. Then
// the first rule whose guards pass is taken from the nearest state that has
// rules for the event.
func (i *Instance) Dispatch(sig *Signal) error {
	if sig == nil {
		sig = NewSignal("")
	}

	return i.record(sig, func(v view) (Kind, error) { return i.dispatch(v, sig) })
}

func (i *Instance) dispatch(v view, sig *Signal) (Kind, error) {
	if err := i.handle(v, sig); err != nil {
		return KindNone, err
	}

	from := i.current

	rules := v.lookup(from, sig.Name, sig.Propagate)
	if rules.Empty() {
		return KindNone, &ErrInvalidTransition{From: from, Event: sig.Name, Reason: NoRule}
	}

	i.ctx.at(from, "", sig)

	r, rejected, err := i.pick(rules)
	if err != nil {
		return KindNone, err
	}

	if r == nil {
		return KindNone, &ErrInvalidTransition{
			From:     from,
			Event:    sig.Name,
			Reason:   GuardsRejected,
			Rejected: rejected,
		}
	}

	if r.internal {
		return KindInternal, i.internal(r, sig)
	}

	target, err := v.leaf(r.to)
	if err != nil {
		return KindNone, err
	}

	kind := KindExternal
	if target == from {
		kind = KindSelf
	}

	return kind, i.transit(v, r, sig, target, true)
}

// handle runs the state event handlers for sig.
func (i *Instance) handle(v view, sig *Signal) error {
	for current := i.current; current != ""; {
		s, ok := v.state(current)
		if !ok {
			return nil
		}

		if cbs := s.handlers[sig.Name]; cbs.NotEmpty() {
			for _, cb := range cbs {
				i.ctx.at(current, "", sig)
				if err := i.call(cb, "Handler", current); err != nil {
					return err
				}
			}

			return nil
		}

		if !sig.Propagate {
			return nil
		}

		current = s.parent
	}

	return nil
}

// Revert moves back to the most recent history entry and records the state it
// leaves, so a second Revert returns. It does nothing when the history is empty.
func (i *Instance) Revert(sig ...*Signal) error { return i.revert(true, sig) }

// RevertConsuming moves back to the most recent history entry without
// recording the state it leaves. It does nothing when the history is empty.
func (i *Instance) RevertConsuming(sig ...*Signal) error { return i.revert(false, sig) }

func (i *Instance) revert(record bool, sigs []*Signal) error {
	if i.dispatching {
		return ErrReentrantDispatch
	}

	target := i.history.Pop()
	if target.IsNone() {
		return nil
	}

	sig := signalOr(sigs, "revert")

	return i.record(sig, func(v view) (Kind, error) {
		return KindRevert, i.transit(v, nil, sig, target.Some(), record)
	})
}

func signalOr(sigs []*Signal, name Event) *Signal {
	if len(sigs) > 0 && sigs[0] != nil {
		return sigs[0]
	}

	return NewSignal(name)
}

// SwitchTo moves to state, and its initial children, without consulting any
// rule. Hooks run and the exited leaf is recorded as for a transition.
func (i *Instance) SwitchTo(state State, sig ...*Signal) error {
	if !i.view().has(state) {
		return &ErrUnknownState{State: state}
	}

	s := signalOr(sig, "switch")

	return i.record(s, func(v view) (Kind, error) {
		target, err := v.leaf(state)
		if err != nil {
			return KindSwitch, err
		}

		return KindSwitch, i.transit(v, nil, s, target, true)
	})
}

// Reset clears the history and context data and enters the initial state again.
// No exit hooks run for the states that were active.
func (i *Instance) Reset() error {
	if i.dispatching {
		return ErrReentrantDispatch
	}

	i.current = ""
	i.history.Clear()
	i.ctx.Data = g.NewMapSafe[g.String, any]()
	i.ctx.Meta = g.NewMapSafe[g.String, any]()

	return i.start(NewSignal("reset"))
}

// SetState forcefully sets the current state, bypassing all hooks and guards.
// WARNING: This is a low-level method intended for state restoration.
func (i *Instance) SetState(state State) error {
	if !i.view().has(state) {
		return &ErrUnknownState{State: state}
	}

	i.current = state
	i.ctx.State = state

	return nil
}

// Machine returns the definition the instance runs.
func (i *Instance) Machine() *Machine { return i.machine }

// Entity returns the object the instance was created for.
func (i *Instance) Entity() any { return i.entity }

// Context returns the instance's context.
func (i *Instance) Context() *Context { return i.ctx }

// Current returns the current leaf state.
func (i *Instance) Current() State { return i.current }

// Is reports whether the current leaf is state.
func (i *Instance) Is(state State) bool { return Match(i.current, state) }

// IsIn reports whether state is the current leaf or one of its ancestors.
func (i *Instance) IsIn(state State) bool {
	if state == WhateverState {
		return true
	}

	chain, err := i.view().chain(i.current)
	if err != nil {
		return false
	}

	return chain.Contains(state)
}

// Behavior returns the behavior of the nearest active state that has one, or nil.
func (i *Instance) Behavior() Behavior { return i.view().behavior(i.current) }

// History returns the recorded leaves, oldest first.
func (i *Instance) History() g.Slice[State] { return i.history.Items() }

// Events returns, sorted, the events that have a rule on the current state or an ancestor.
func (i *Instance) Events() g.Slice[Event] { return i.view().events(i.current) }

// CanTrigger reports whether event with input would take a rule from the
// current state. Guards are evaluated; no hook runs.
func (i *Instance) CanTrigger(event Event, input ...any) bool {
	sig := NewSignal(event, input...)

	rules := i.view().lookup(i.current, event, sig.Propagate)
	if rules.Empty() {
		return false
	}

	saved := *i.ctx
	defer func() { *i.ctx = saved }()

	i.ctx.at(i.current, "", sig)
	r, _, err := i.pick(rules)

	return err == nil && r != nil
}
