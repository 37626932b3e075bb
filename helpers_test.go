package hsm_test

import (
	"testing"

	"github.com/enetx/g"
	. "github.com/enetx/hsm"
)

func assertEqual[T comparable](t *testing.T, got, want T) {
	t.Helper()
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func assertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func assertTrue(t *testing.T, cond bool) {
	t.Helper()
	if !cond {
		t.Fatalf("expected true, got false")
	}
}

func assertFalse(t *testing.T, cond bool) {
	t.Helper()
	if cond {
		t.Fatalf("expected false, got true")
	}
}

// journal records hook invocations in order.
type journal struct {
	entries g.Slice[g.String]
}

func (j *journal) hook(label string) Callback {
	return func(*Context) error {
		j.entries.Push(g.String(label))
		return nil
	}
}

func (j *journal) String() string { return string(j.entries.Join(" ")) }

func (j *journal) clear() { j.entries = nil }

// coffee is the standing/walking/caffeinated machine.
func coffee(t *testing.T, opts ...MachineOption) *Machine {
	t.Helper()

	m, err := Define("coffee", opts...).
		State("standing", Initial()).
		State("walking").
		State("caffeinated").
		Substate("caffeinated", "dithering", Initial()).
		Substate("caffeinated", "running").
		Transition("standing", "walk", "walking").
		Transition("walking", "stop", "standing").
		Wildcard("drink", "caffeinated").
		Transition("caffeinated", "walk", "caffeinated.running").
		Transition("caffeinated", "relax", "standing").
		Build()
	assertNoError(t, err)

	return m
}

func newInstance(t *testing.T, m *Machine) *Instance {
	t.Helper()

	inst, err := m.NewInstance(nil)
	assertNoError(t, err)

	return inst
}
