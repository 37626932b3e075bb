package hsm

import (
	"sync"

	"github.com/enetx/g"
)

// SyncInstance is a thread-safe wrapper around an Instance.
// It protects all state-mutating and state-reading operations with a sync.RWMutex,
// making it safe for use across multiple goroutines.
// Hooks run with the lock held and must not call back into the wrapper.
type SyncInstance struct {
	inst *Instance
	mu   sync.RWMutex
}

// Sync returns a thread-safe wrapper around the instance. Use only the wrapper afterwards.
func (i *Instance) Sync() *SyncInstance { return &SyncInstance{inst: i} }

// Unwrap returns the wrapped instance.
func (si *SyncInstance) Unwrap() *Instance { return si.inst }

// Trigger is the thread-safe version of Instance.Trigger.
func (si *SyncInstance) Trigger(event Event, input ...any) error {
	si.mu.Lock()
	defer si.mu.Unlock()

	return si.inst.Trigger(event, input...)
}

// Dispatch is the thread-safe version of Instance.Dispatch.
func (si *SyncInstance) Dispatch(sig *Signal) error {
	si.mu.Lock()
	defer si.mu.Unlock()

	return si.inst.Dispatch(sig)
}

// Revert is the thread-safe version of Instance.Revert.
func (si *SyncInstance) Revert(sig ...*Signal) error {
	si.mu.Lock()
	defer si.mu.Unlock()

	return si.inst.Revert(sig...)
}

// RevertConsuming is the thread-safe version of Instance.RevertConsuming.
func (si *SyncInstance) RevertConsuming(sig ...*Signal) error {
	si.mu.Lock()
	defer si.mu.Unlock()

	return si.inst.RevertConsuming(sig...)
}

// SwitchTo is the thread-safe version of Instance.SwitchTo.
func (si *SyncInstance) SwitchTo(state State, sig ...*Signal) error {
	si.mu.Lock()
	defer si.mu.Unlock()

	return si.inst.SwitchTo(state, sig...)
}

// Current is the thread-safe version of Instance.Current.
func (si *SyncInstance) Current() State {
	si.mu.RLock()
	defer si.mu.RUnlock()

	return si.inst.Current()
}

// Is is the thread-safe version of Instance.Is.
func (si *SyncInstance) Is(state State) bool {
	si.mu.RLock()
	defer si.mu.RUnlock()

	return si.inst.Is(state)
}

// IsIn is the thread-safe version of Instance.IsIn.
func (si *SyncInstance) IsIn(state State) bool {
	si.mu.RLock()
	defer si.mu.RUnlock()

	return si.inst.IsIn(state)
}

// CanTrigger is the thread-safe version of Instance.CanTrigger.
// Guards may touch the context, so it takes the write lock.
func (si *SyncInstance) CanTrigger(event Event, input ...any) bool {
	si.mu.Lock()
	defer si.mu.Unlock()

	return si.inst.CanTrigger(event, input...)
}

// Events is the thread-safe version of Instance.Events.
func (si *SyncInstance) Events() g.Slice[Event] {
	si.mu.RLock()
	defer si.mu.RUnlock()

	return si.inst.Events()
}

// Context is the thread-safe version of Instance.Context.
// It returns a pointer to the instance's context.
func (si *SyncInstance) Context() *Context {
	si.mu.RLock()
	defer si.mu.RUnlock()

	return si.inst.Context()
}

// SetState is the thread-safe version of Instance.SetState.
func (si *SyncInstance) SetState(state State) error {
	si.mu.Lock()
	defer si.mu.Unlock()

	return si.inst.SetState(state)
}

// Reset is the thread-safe version of Instance.Reset.
func (si *SyncInstance) Reset() error {
	si.mu.Lock()
	defer si.mu.Unlock()

	return si.inst.Reset()
}

// History is the thread-safe version of Instance.History.
func (si *SyncInstance) History() g.Slice[State] {
	si.mu.RLock()
	defer si.mu.RUnlock()

	return si.inst.History()
}

// ToDOT is the thread-safe version of Instance.ToDOT.
func (si *SyncInstance) ToDOT() g.String {
	si.mu.RLock()
	defer si.mu.RUnlock()

	return si.inst.ToDOT()
}

// MarshalJSON is the thread-safe version of Instance.MarshalJSON.
func (si *SyncInstance) MarshalJSON() ([]byte, error) {
	si.mu.RLock()
	defer si.mu.RUnlock()

	return si.inst.MarshalJSON()
}

// UnmarshalJSON is the thread-safe version of Instance.UnmarshalJSON.
func (si *SyncInstance) UnmarshalJSON(data []byte) error {
	si.mu.Lock()
	defer si.mu.Unlock()

	return si.inst.UnmarshalJSON(data)
}
