package hsm_test

import (
	"errors"
	"testing"

	"github.com/enetx/g"
	. "github.com/enetx/hsm"
)

func TestMachine_AddStates(t *testing.T) {
	m := NewMachine("test")
	for _, s := range []State{"A", "B", "C", "D"} {
		assertNoError(t, m.AddState(s))
	}

	states := m.States()
	assertEqual(t, len(states), 4)
	assertEqual(t, states.Join(","), g.String("A,B,C,D"))

	var dup *ErrDuplicateState
	err := m.AddState("A")
	assertTrue(t, errors.As(err, &dup))
	assertEqual(t, dup.State, State("A"))

	_, err = m.State("X")
	var unknown *ErrUnknownState
	assertTrue(t, errors.As(err, &unknown))
}

func TestMachine_InitialState(t *testing.T) {
	m := NewMachine("test")
	assertNoError(t, m.AddState("A", Initial()))
	assertNoError(t, m.AddState("B"))
	assertNoError(t, m.AddState("C"))
	assertEqual(t, m.Initial(), State("A"))

	var already *ErrAlreadyHasInitial
	assertTrue(t, errors.As(m.SetInitial("C", false), &already))
	assertEqual(t, already.Initial, State("A"))
	assertEqual(t, already.Requested, State("C"))

	assertNoError(t, m.SetInitial("C", true))
	assertEqual(t, m.Initial(), State("C"))

	// Setting the same initial twice is not a conflict.
	assertNoError(t, m.SetInitial("C", false))

	var unknown *ErrUnknownState
	assertTrue(t, errors.As(m.SetInitial("X", true), &unknown))
}

func TestMachine_NestedInitial(t *testing.T) {
	m := NewMachine("test")
	assertNoError(t, m.AddState("C"))
	assertNoError(t, m.AddState("1", Parent("C"), Initial()))
	assertNoError(t, m.AddState("2", Parent("C")))

	info, err := m.State("C")
	assertNoError(t, err)
	assertEqual(t, info.Initial, State("C.1"))
	assertEqual(t, m.Initial(), State(""))

	var already *ErrAlreadyHasInitial
	assertTrue(t, errors.As(m.SetInitial("C.2", false), &already))
	assertEqual(t, already.Parent, State("C"))
}

func TestMachine_QualifiedNames(t *testing.T) {
	m := NewMachine("test")
	assertNoError(t, m.AddState("C"))
	assertNoError(t, m.AddState("1", Parent("C")))
	assertNoError(t, m.AddState("2", Parent("C")))
	assertNoError(t, m.AddState("a", Parent("C.2")))

	info, err := m.State("C.2.a")
	assertNoError(t, err)
	assertEqual(t, info.Local, State("a"))
	assertEqual(t, info.Parent, State("C.2"))

	info, err = m.State("C")
	assertNoError(t, err)
	assertEqual(t, info.Children.Join(","), g.String("C.1,C.2"))
}

func TestMachine_CustomSeparator(t *testing.T) {
	m := NewMachine("test", WithSeparator("/"))
	assertNoError(t, m.AddState("C"))
	assertNoError(t, m.AddState("1", Parent("C")))

	_, err := m.State("C/1")
	assertNoError(t, err)
	assertEqual(t, m.Separator(), "/")
}

func TestMachine_UnknownParent(t *testing.T) {
	m := NewMachine("test")

	var unknown *ErrUnknownState
	assertTrue(t, errors.As(m.AddState("1", Parent("C")), &unknown))
	assertEqual(t, unknown.State, State("C"))
	assertEqual(t, len(m.States()), 0)
}

func TestMachine_ForceKeepsChildren(t *testing.T) {
	var j journal

	m := NewMachine("test")
	assertNoError(t, m.AddState("C", OnEnter(j.hook("old"))))
	assertNoError(t, m.AddState("1", Parent("C"), Initial()))
	assertNoError(t, m.AddState("C", Force(), OnEnter(j.hook("new"))))

	info, err := m.State("C")
	assertNoError(t, err)
	assertEqual(t, info.Initial, State("C.1"))
	assertEqual(t, len(info.Children), 1)
	assertEqual(t, len(m.States()), 2)

	assertNoError(t, m.SetInitial("C", false))
	_, err = m.NewInstance(nil)
	assertNoError(t, err)
	assertEqual(t, j.String(), "new")
}

func TestMachine_WhateverState(t *testing.T) {
	m := NewMachine("test")
	assertTrue(t, errors.Is(m.AddState(WhateverState), ErrWhateverState))

	assertNoError(t, m.AddState("A"))
	assertTrue(t, errors.Is(m.AddTransition("A", "go", WhateverState), ErrWhateverState))

	assertTrue(t, Match(WhateverState, "A"))
	assertTrue(t, Match("A", WhateverState))
	assertTrue(t, Match("A", "A"))
	assertFalse(t, Match("A", "B"))
}

func TestMachine_AddTransitionUnknownStates(t *testing.T) {
	m := NewMachine("test")
	assertNoError(t, m.AddState("A"))
	assertNoError(t, m.AddState("B"))

	var unknown *ErrUnknownState
	assertTrue(t, errors.As(m.AddTransition("X", "walk", "B"), &unknown))
	assertEqual(t, unknown.State, State("X"))

	assertTrue(t, errors.As(m.AddTransition("A", "walk", "X"), &unknown))
	assertEqual(t, unknown.State, State("X"))

	assertTrue(t, errors.As(m.AddInternalTransition("X", "tick"), &unknown))
	assertNoError(t, m.AddInternalTransition(WhateverState, "tick"))
}

func TestMachine_Sealed(t *testing.T) {
	m := coffee(t)
	assertFalse(t, m.Sealed())

	_ = newInstance(t, m)
	assertTrue(t, m.Sealed())

	assertTrue(t, errors.Is(m.AddState("sleeping"), ErrSealed))
	assertTrue(t, errors.Is(m.AddTransition("standing", "sleep", "walking"), ErrSealed))
	assertTrue(t, errors.Is(m.SetInitial("walking", true), ErrSealed))
}

func TestMachine_NoInitialState(t *testing.T) {
	m := NewMachine("test")
	assertNoError(t, m.AddState("A"))

	_, err := m.NewInstance(nil)
	assertTrue(t, errors.Is(err, ErrNoInitialState))
}

func TestMachine_LCA(t *testing.T) {
	m := coffee(t)

	tests := []struct {
		a, b State
		want State
	}{
		{"caffeinated.dithering", "caffeinated.running", "caffeinated"},
		{"caffeinated", "caffeinated.running", "caffeinated"},
		{"caffeinated.running", "caffeinated.running", "caffeinated.running"},
		{"standing", "caffeinated.running", ""},
		{"standing", "walking", ""},
	}

	for _, tt := range tests {
		got, err := m.LCA(tt.a, tt.b)
		assertNoError(t, err)
		assertEqual(t, got, tt.want)
	}

	_, err := m.LCA("standing", "nowhere")
	var broken *ErrBrokenHierarchy
	assertTrue(t, errors.As(err, &broken))
}

func TestMachine_Leaf(t *testing.T) {
	m := coffee(t)

	leaf, err := m.Leaf("caffeinated")
	assertNoError(t, err)
	assertEqual(t, leaf, State("caffeinated.dithering"))

	leaf, err = m.Leaf("walking")
	assertNoError(t, err)
	assertEqual(t, leaf, State("walking"))

	_, err = m.Leaf("nowhere")
	assertError(t, err)
}

func TestBuilder_CollectsErrors(t *testing.T) {
	_, err := Define("broken").
		State("A", Initial()).
		State("A").
		Transition("A", "go", "missing").
		Build()
	assertError(t, err)

	var dup *ErrDuplicateState
	var unknown *ErrUnknownState
	assertTrue(t, errors.As(err, &dup))
	assertTrue(t, errors.As(err, &unknown))
	assertEqual(t, unknown.State, State("missing"))
}

func TestBuilder_MustBuildPanics(t *testing.T) {
	defer func() {
		assertTrue(t, recover() != nil)
	}()

	Define("broken").State("A", Parent("nowhere")).MustBuild()
}
