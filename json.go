package hsm

import (
	"encoding/json"
	"fmt"

	"github.com/enetx/g"
)

// InstanceState is a serializable representation of an instance's runtime.
// History lists recorded leaves oldest first.
type InstanceState struct {
	Current State                `json:"current"`
	History g.Slice[State]       `json:"history"`
	Data    g.Map[g.String, any] `json:"data"`
	Meta    g.Map[g.String, any] `json:"meta"`
}

// MarshalJSON implements the json.Marshaler interface.
func (i *Instance) MarshalJSON() ([]byte, error) {
	state := InstanceState{
		Current: i.current,
		History: i.history.Items(),
		Data:    i.ctx.Data.Iter().Collect(),
		Meta:    i.ctx.Meta.Iter().Collect(),
	}

	return json.Marshal(state)
}

// UnmarshalJSON implements the json.Unmarshaler interface. The instance must
// have been created by its machine; every state named in the data must be
// known to the instance. No hooks run.
func (i *Instance) UnmarshalJSON(data []byte) error {
	var state InstanceState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("failed to unmarshal hsm instance state: %w", err)
	}

	v := i.view()
	if !v.has(state.Current) {
		return &ErrUnknownState{State: state.Current}
	}

	for _, s := range state.History {
		if !v.has(s) {
			return &ErrUnknownState{State: s}
		}
	}

	if state.Data == nil {
		state.Data = g.NewMap[g.String, any]()
	}

	if state.Meta == nil {
		state.Meta = g.NewMap[g.String, any]()
	}

	i.current = state.Current
	i.history.Clear()

	for _, s := range state.History {
		i.history.Push(s)
	}

	i.ctx.State = state.Current
	i.ctx.Data = state.Data.ToMapSafe()
	i.ctx.Meta = state.Meta.ToMapSafe()

	return nil
}
