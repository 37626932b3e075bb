package hsm

import (
	"fmt"

	"github.com/enetx/g"
)

// Signal is one occurrence of an event delivered to Instance.Dispatch.
//
// Input is the value matched by OnInput guards and exposed as Context.Input.
// Cargo carries arbitrary named values to guards and hooks. When Propagate is
// true, state event handlers and transition lookup continue on the parent of a
// state that has nothing registered for the event.
type Signal struct {
	Name      Event
	Input     any
	Propagate bool
	Cargo     g.Map[g.String, any]
}

// NewSignal returns a propagating signal for the event with an optional input.
func NewSignal(name Event, input ...any) *Signal {
	s := &Signal{Name: name, Propagate: true, Cargo: g.NewMap[g.String, any]()}
	if len(input) > 0 {
		s.Input = input[0]
	}

	return s
}

// With stores a cargo value and returns the signal.
func (s *Signal) With(key g.String, value any) *Signal {
	if s.Cargo == nil {
		s.Cargo = g.NewMap[g.String, any]()
	}

	s.Cargo[key] = value

	return s
}

// Local stops the signal from bubbling to parent states and returns it.
func (s *Signal) Local() *Signal {
	s.Propagate = false
	return s
}

func (s *Signal) String() string {
	return fmt.Sprintf("<Signal %s input=%v propagate=%t cargo=%v>", s.Name, s.Input, s.Propagate, s.Cargo)
}
