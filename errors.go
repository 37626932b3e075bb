package hsm

import (
	"errors"
	"fmt"

	"github.com/enetx/g"
)

var (
	// ErrNoInitialState is returned by NewInstance when the machine has no root initial state.
	ErrNoInitialState = errors.New("hsm: machine has no initial state")
	// ErrWhateverState is returned when WhateverState is registered as a state or used as a target.
	ErrWhateverState = errors.New("hsm: WhateverState cannot be registered or used as a target")
	// ErrSealed is returned by definition methods once the machine has produced an instance.
	ErrSealed = errors.New("hsm: machine definition is sealed after the first instance")
	// ErrReentrantDispatch is returned when a hook dispatches to the instance that is running it.
	ErrReentrantDispatch = errors.New("hsm: dispatch called while the instance is dispatching")
)

// ErrUnknownState is returned when a referenced state has not been registered.
type ErrUnknownState struct {
	State State
}

func (e *ErrUnknownState) Error() string {
	return fmt.Sprintf("hsm: unknown state %q", e.State)
}

// ErrDuplicateState is returned when a qualified name is registered twice without Force.
type ErrDuplicateState struct {
	State State
}

func (e *ErrDuplicateState) Error() string {
	return fmt.Sprintf("hsm: state %q is already registered", e.State)
}

// ErrAlreadyHasInitial is returned when an initial state is replaced without force.
// Parent is empty for the machine's root initial state.
type ErrAlreadyHasInitial struct {
	Parent    State
	Initial   State
	Requested State
}

func (e *ErrAlreadyHasInitial) Error() string {
	if e.Parent == "" {
		return fmt.Sprintf("hsm: machine already has initial state %q, cannot set %q", e.Initial, e.Requested)
	}

	return fmt.Sprintf("hsm: state %q already has initial state %q, cannot set %q",
		e.Parent, e.Initial, e.Requested)
}

// Reason tells why a dispatch could not find a transition.
type Reason int

const (
	// NoRule means no state from the leaf up has a rule for the event.
	NoRule Reason = iota
	// GuardsRejected means candidate rules exist but every one failed its guards.
	GuardsRejected
)

func (r Reason) String() string {
	switch r {
	case NoRule:
		return "no_rule"
	case GuardsRejected:
		return "guards_rejected"
	default:
		return fmt.Sprintf("reason(%d)", int(r))
	}
}

// ErrInvalidTransition is returned when an event cannot be handled from the current state.
// Rejected lists the guards that failed, in evaluation order, when Reason is GuardsRejected.
type ErrInvalidTransition struct {
	From     State
	Event    Event
	Reason   Reason
	Rejected g.Slice[g.String]
}

func (e *ErrInvalidTransition) Error() string {
	if e.Reason == GuardsRejected {
		if e.Rejected.NotEmpty() {
			return fmt.Sprintf("hsm: event %q from state %q rejected by guards [%s]",
				e.Event, e.From, e.Rejected.Join(", "))
		}

		return fmt.Sprintf("hsm: event %q from state %q rejected by guards", e.Event, e.From)
	}

	return fmt.Sprintf("hsm: no transition for event %q from state %q", e.Event, e.From)
}

// ErrInvalidEventState is returned when an instance-local transition names a
// state that exists neither in the instance nor in its machine.
type ErrInvalidEventState struct {
	Event Event
	State State
}

func (e *ErrInvalidEventState) Error() string {
	return fmt.Sprintf("hsm: transition on event %q references unknown state %q", e.Event, e.State)
}

// ErrCallback is returned when a hook (OnEnter, OnExit, Before, Action, After,
// a state handler or a guard) returns an error or panics. It wraps the
// original error, allowing it to be inspected using errors.Is and errors.As.
type ErrCallback struct {
	// HookType is the kind of hook where the error occurred (e.g. "OnEnter", "Action").
	HookType string
	// State is the state associated with the hook.
	State State
	// Err is the original error or the error created after recovering from a panic.
	Err error
}

func (e *ErrCallback) Error() string {
	if e.State != "" {
		return fmt.Sprintf("hsm: error in %s callback for state %q: %v", e.HookType, e.State, e.Err)
	}

	return fmt.Sprintf("hsm: error in %s hook: %v", e.HookType, e.Err)
}

func (e *ErrCallback) Unwrap() error { return e.Err }

// ErrBrokenHierarchy is returned when a state's parent chain leaves the registry or loops.
type ErrBrokenHierarchy struct {
	State State
}

func (e *ErrBrokenHierarchy) Error() string {
	return fmt.Sprintf("hsm: state %q has a broken parent chain", e.State)
}

// ErrUnresolved is returned by the definition loader for a guard or hook name
// that the resolver does not know.
type ErrUnresolved struct {
	Kind string
	Name g.String
}

func (e *ErrUnresolved) Error() string {
	return fmt.Sprintf("hsm: unresolved %s %q", e.Kind, e.Name)
}
