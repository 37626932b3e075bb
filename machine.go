package hsm

import (
	"log/slog"
	"sync/atomic"

	"github.com/enetx/g"
)

// Machine is a shared state machine definition. Define states and transitions,
// then create instances with NewInstance. The first NewInstance seals the
// definition; instances of a sealed machine may run on different goroutines.
type Machine struct {
	name         string
	base         *layer
	historySize  int
	logger       *slog.Logger
	observers    g.Slice[Observer]
	stateChanged g.Slice[func(*Instance, State)]
	sealed       atomic.Bool
}

// NewMachine returns an empty machine definition.
func NewMachine(name string, opts ...MachineOption) *Machine {
	m := &Machine{
		name:        name,
		base:        newLayer(DefaultSeparator),
		historySize: DefaultHistorySize,
		logger:      slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

func (m *Machine) view() view { return view{m.base} }

// Name returns the machine's name.
func (m *Machine) Name() string { return m.name }

// Separator returns the string joining parent and child names.
func (m *Machine) Separator() string { return string(m.base.reg.sep) }

// Sealed reports whether the machine has produced an instance.
func (m *Machine) Sealed() bool { return m.sealed.Load() }

// AddState registers a state. With Parent the state is nested and its
// qualified name is the parent's name, the separator and name.
func (m *Machine) AddState(name State, opts ...StateOption) error {
	if m.Sealed() {
		return ErrSealed
	}

	def, err := m.view().addState(name, newStateConfig(opts))
	if err != nil {
		return err
	}

	m.logger.Debug("hsm: state added", "machine", m.name, "state", def.name)

	return nil
}

// SetInitial makes name the initial state of its parent, or of the machine
// when name is top-level.
func (m *Machine) SetInitial(name State, force bool) error {
	if m.Sealed() {
		return ErrSealed
	}

	return m.view().setInitial(name, force)
}

// AddTransition registers a rule moving from to to on event. A from of
// WhateverState registers a wildcard rule applying to every state.
func (m *Machine) AddTransition(from State, event Event, to State, opts ...TransitionOption) error {
	return m.addRule(newRule(from, event, to, false, opts))
}

// AddWildcardTransition registers a rule moving any state to to on event.
func (m *Machine) AddWildcardTransition(event Event, to State, opts ...TransitionOption) error {
	return m.AddTransition(WhateverState, event, to, opts...)
}

// AddInternalTransition registers a rule that runs its guards and hooks on
// event without leaving state.
func (m *Machine) AddInternalTransition(state State, event Event, opts ...TransitionOption) error {
	return m.addRule(newRule(state, event, "", true, opts))
}

func (m *Machine) addRule(r *rule) error {
	if m.Sealed() {
		return ErrSealed
	}

	if err := m.view().addRule(r, unknownState); err != nil {
		return err
	}

	m.logger.Debug("hsm: transition added",
		"machine", m.name,
		"from", r.from,
		"event", r.event,
		"to", r.to,
		"internal", r.internal,
	)

	return nil
}

func unknownState(s State) error { return &ErrUnknownState{State: s} }

// Initial returns the machine's initial state, or "" when none is set.
func (m *Machine) Initial() State { return m.base.reg.initial }

// State returns the registration of a qualified state name.
func (m *Machine) State(name State) (StateInfo, error) {
	s, ok := m.view().state(name)
	if !ok {
		return StateInfo{}, &ErrUnknownState{State: name}
	}

	return s.info(), nil
}

// States returns every registered state in registration order.
func (m *Machine) States() g.Slice[State] { return m.base.reg.order.Clone() }

// LCA returns the lowest common ancestor of a and b, counting each state as
// its own ancestor. It is "" when the states share no ancestor.
func (m *Machine) LCA(a, b State) (State, error) { return m.view().lca(a, b) }

// Leaf returns the state reached from name by following initial children.
func (m *Machine) Leaf(name State) (State, error) {
	if !m.view().has(name) {
		return "", &ErrUnknownState{State: name}
	}

	return m.view().leaf(name)
}

// ToDOT renders the machine definition in the Graphviz DOT language.
func (m *Machine) ToDOT() g.String { return m.view().dot(m.name, "") }
