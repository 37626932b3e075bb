package hsm

import (
	"errors"

	"github.com/enetx/g"
)

// Builder defines a machine through chained calls. The first failing call is
// not fatal: every error is kept and Build returns them joined.
type Builder struct {
	m    *Machine
	errs g.Slice[error]
}

// Define starts a machine definition.
func Define(name string, opts ...MachineOption) *Builder {
	return &Builder{m: NewMachine(name, opts...)}
}

func (b *Builder) keep(err error) *Builder {
	if err != nil {
		b.errs.Push(err)
	}

	return b
}

// State registers a state.
func (b *Builder) State(name State, opts ...StateOption) *Builder {
	return b.keep(b.m.AddState(name, opts...))
}

// Substate registers name nested under parent.
func (b *Builder) Substate(parent, name State, opts ...StateOption) *Builder {
	return b.keep(b.m.AddState(name, append([]StateOption{Parent(parent)}, opts...)...))
}

// Initial sets the initial state of name's parent, or of the machine.
func (b *Builder) Initial(name State) *Builder {
	return b.keep(b.m.SetInitial(name, false))
}

// Transition registers a rule.
func (b *Builder) Transition(from State, event Event, to State, opts ...TransitionOption) *Builder {
	return b.keep(b.m.AddTransition(from, event, to, opts...))
}

// Wildcard registers a rule applying to every state registered so far.
func (b *Builder) Wildcard(event Event, to State, opts ...TransitionOption) *Builder {
	return b.keep(b.m.AddWildcardTransition(event, to, opts...))
}

// Internal registers a rule that runs hooks without leaving state.
func (b *Builder) Internal(state State, event Event, opts ...TransitionOption) *Builder {
	return b.keep(b.m.AddInternalTransition(state, event, opts...))
}

// Build returns the machine, or every error collected while defining it.
func (b *Builder) Build() (*Machine, error) {
	if b.errs.NotEmpty() {
		return nil, errors.Join(b.errs...)
	}

	return b.m, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Machine {
	m, err := b.Build()
	if err != nil {
		panic(err)
	}

	return m
}
