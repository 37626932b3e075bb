package hsm

// Instance-local definitions live in an overlay created on the first write.
// The overlay is consulted before the machine, so the shared definition is
// never modified by an instance. A machine state that receives a local child
// is copied into the overlay first.

func (i *Instance) local() view {
	if i.overlay == nil {
		i.overlay = newLayer(i.machine.base.reg.sep)
	}

	return i.view()
}

// AddState registers a state visible to this instance only.
// Parent may name a state of the instance or of its machine.
func (i *Instance) AddState(name State, opts ...StateOption) error {
	def, err := i.local().addState(name, newStateConfig(opts))
	if err != nil {
		return err
	}

	i.machine.logger.Debug("hsm: instance state added", "machine", i.machine.name, "state", def.name)

	return nil
}

// AddTransition registers a rule visible to this instance only. Its rules are
// tried before the machine's rules for the same state and event.
func (i *Instance) AddTransition(from State, event Event, to State, opts ...TransitionOption) error {
	return i.local().addRule(newRule(from, event, to, false, opts), invalidEventState(event))
}

// AddWildcardTransition registers a rule moving any state of this instance to to on event.
func (i *Instance) AddWildcardTransition(event Event, to State, opts ...TransitionOption) error {
	return i.AddTransition(WhateverState, event, to, opts...)
}

// AddInternalTransition registers an internal rule visible to this instance only.
func (i *Instance) AddInternalTransition(state State, event Event, opts ...TransitionOption) error {
	return i.local().addRule(newRule(state, event, "", true, opts), invalidEventState(event))
}

func invalidEventState(event Event) func(State) error {
	return func(s State) error { return &ErrInvalidEventState{Event: event, State: s} }
}
