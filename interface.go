package hsm

import "github.com/enetx/g"

// StateMachine is the runtime surface shared by Instance and SyncInstance.
type StateMachine interface {
	Trigger(Event, ...any) error
	Dispatch(*Signal) error
	Revert(...*Signal) error
	RevertConsuming(...*Signal) error
	SwitchTo(State, ...*Signal) error
	Current() State
	Is(State) bool
	IsIn(State) bool
	CanTrigger(Event, ...any) bool
	Events() g.Slice[Event]
	Context() *Context
	SetState(State) error
	Reset() error
	History() g.Slice[State]
	ToDOT() g.String
	MarshalJSON() ([]byte, error)
	UnmarshalJSON(data []byte) error
}

// Interface compliance checks.
var (
	_ StateMachine = (*Instance)(nil)
	_ StateMachine = (*SyncInstance)(nil)
)
