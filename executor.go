package hsm

import (
	"fmt"

	"github.com/enetx/g"
)

// call runs a hook, recovering from panics.
func (i *Instance) call(cb Callback, hookType string, state State) (err error) {
	if cb == nil {
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = &ErrCallback{HookType: hookType, State: state, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	if cbErr := cb(i.ctx); cbErr != nil {
		err = &ErrCallback{HookType: hookType, State: state, Err: cbErr}
	}

	return err
}

// route returns the states to exit, deepest first, and the states to enter,
// shallowest first, to move from the leaf from to the leaf target. When from
// equals target the leaf is exited and entered again.
func (v view) route(from, target State) (exits, enters g.Slice[State], err error) {
	fc, err := v.chain(from)
	if err != nil {
		return nil, nil, err
	}

	tc, err := v.chain(target)
	if err != nil {
		return nil, nil, err
	}

	depth := 0
	for depth < len(fc) && depth < len(tc) && fc[depth] == tc[depth] {
		depth++
	}

	if from == target && depth > 0 {
		depth--
	}

	for k := len(fc) - 1; k >= depth; k-- {
		exits.Push(fc[k])
	}

	return exits, tc[depth:], nil
}

func (i *Instance) exit(v view, name, peer State, sig *Signal) error {
	s, ok := v.state(name)
	if !ok {
		return &ErrBrokenHierarchy{State: name}
	}

	i.ctx.at(name, peer, sig)

	for _, cb := range s.onExit {
		if err := i.call(cb, "OnExit", name); err != nil {
			return err
		}
	}

	if s.behavior != nil {
		if err := i.call(s.behavior.Exit, "OnExit", name); err != nil {
			return err
		}
	}

	i.current = s.parent

	return nil
}

func (i *Instance) enter(v view, name, peer State, sig *Signal) error {
	s, ok := v.state(name)
	if !ok {
		return &ErrBrokenHierarchy{State: name}
	}

	i.current = name
	i.ctx.at(name, peer, sig)

	if s.behavior != nil {
		if err := i.call(s.behavior.Enter, "OnEnter", name); err != nil {
			return err
		}
	}

	for _, cb := range s.onEnter {
		if err := i.call(cb, "OnEnter", name); err != nil {
			return err
		}
	}

	i.changed(name)

	return nil
}

func (i *Instance) changed(state State) {
	for _, fn := range i.machine.stateChanged {
		fn(i, state)
	}
}

// transit moves the instance from its current leaf to target. r is nil for
// moves that are not driven by a rule. When record is set the exited leaf is
// pushed onto the history. A failing hook stops the move where it is.
func (i *Instance) transit(v view, r *rule, sig *Signal, target State, record bool) error {
	from := i.current

	exits, enters, err := v.route(from, target)
	if err != nil {
		return err
	}

	if r != nil {
		i.ctx.at(from, target, sig)
		if err := i.call(r.before, "Before", from); err != nil {
			return err
		}
	}

	for _, s := range exits {
		if err := i.exit(v, s, target, sig); err != nil {
			return err
		}

		if record && s == from {
			i.history.Push(from)
		}
	}

	if r != nil {
		i.ctx.at(from, target, sig)
		if err := i.call(r.action, "Action", from); err != nil {
			return err
		}
	}

	for _, s := range enters {
		if err := i.enter(v, s, from, sig); err != nil {
			return err
		}
	}

	if enters.Empty() && i.current != from {
		i.changed(i.current)
	}

	if r != nil {
		i.ctx.at(from, target, sig)
		if err := i.call(r.after, "After", from); err != nil {
			return err
		}
	}

	return nil
}

// internal runs the hooks of a rule without leaving the current state.
func (i *Instance) internal(r *rule, sig *Signal) error {
	state := i.current

	i.ctx.at(state, state, sig)
	if err := i.call(r.before, "Before", state); err != nil {
		return err
	}

	i.ctx.at(state, state, sig)
	if err := i.call(r.action, "Action", state); err != nil {
		return err
	}

	i.ctx.at(state, state, sig)

	return i.call(r.after, "After", state)
}
