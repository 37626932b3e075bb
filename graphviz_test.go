package hsm_test

import (
	"strings"
	"testing"

	. "github.com/enetx/hsm"
)

func TestToDOT_Machine(t *testing.T) {
	m, err := Define("coffee").
		State("standing", Initial(), OnEnter(func(*Context) error { return nil })).
		State("walking").
		State("caffeinated").
		Substate("caffeinated", "dithering", Initial()).
		Substate("caffeinated", "running").
		Transition("standing", "walk", "walking").
		Transition("walking", "stop", "standing", When(func(*Context) bool { return true })).
		Wildcard("drink", "caffeinated").
		Transition("caffeinated", "walk", "caffeinated.running").
		Internal("caffeinated.running", "pant").
		Build()
	assertNoError(t, err)

	dot := string(m.ToDOT())

	for _, want := range []string{
		"digraph HSM {",
		"__start -> \"standing\"",
		"subgraph \"cluster_caffeinated\" {",
		"\"caffeinated.dithering\" [label=\"dithering\"",
		"\"standing\" -> \"walking\" [label=\" walk \"]",
		"\"walking\" -> \"standing\" [label=\" stop (guarded) \", style=dashed, color=red",
		"\"*\" -> \"caffeinated\" [label=\" drink \"]",
		"\"caffeinated.running\" -> \"caffeinated.running\" [label=\" pant (internal) \", style=dotted",
		"tooltip=\"OnEnter\"",
	} {
		assertTrue(t, strings.Contains(dot, want))
	}

	// Wildcard rules are drawn once, not once per state.
	assertEqual(t, strings.Count(dot, "drink"), 1)
}

func TestToDOT_InstanceHighlightsCurrent(t *testing.T) {
	inst := newInstance(t, coffee(t))
	assertNoError(t, inst.Trigger("drink"))

	dot := string(inst.ToDOT())
	assertTrue(t, strings.Contains(dot, "\"caffeinated.dithering\" [label=\"dithering\", fillcolor=\"#90ee90\""))
	assertTrue(t, strings.Contains(dot, "color=\"#2e8b57\""))
}
