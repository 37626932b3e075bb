package hsm_test

import (
	"errors"
	"os"
	"testing"

	"github.com/enetx/g"
	. "github.com/enetx/hsm"
)

func coffeeFuncs(j *journal, decaf *bool) Funcs {
	return Funcs{
		Guards: g.Map[g.String, GuardFunc]{
			"decaf": func(*Context) bool { return *decaf },
		},
		Hooks: g.Map[g.String, Callback]{
			"greet":    j.hook("greet"),
			"farewell": j.hook("farewell"),
			"cheer":    j.hook("cheer"),
		},
	}
}

func TestDefinition_LoadYAML(t *testing.T) {
	data, err := os.ReadFile("testdata/coffee.yaml")
	assertNoError(t, err)

	var j journal

	decaf := false

	m, err := LoadYAML(data, coffeeFuncs(&j, &decaf))
	assertNoError(t, err)
	assertEqual(t, m.Name(), "coffee")
	assertEqual(t, m.Initial(), State("standing"))

	info, err := m.State("caffeinated")
	assertNoError(t, err)
	assertEqual(t, info.Initial, State("caffeinated.dithering"))

	inst := newInstance(t, m)
	assertEqual(t, j.String(), "greet")

	assertNoError(t, inst.Trigger("walk"))
	assertEqual(t, inst.Current(), State("walking"))

	decaf = true
	var invalid *ErrInvalidTransition
	assertTrue(t, errors.As(inst.Trigger("drink"), &invalid))
	assertEqual(t, invalid.Rejected.Join(","), g.String("!decaf"))

	decaf = false
	assertNoError(t, inst.Trigger("drink"))
	assertEqual(t, inst.Current(), State("caffeinated.dithering"))

	j.clear()
	assertNoError(t, inst.Trigger("walk"))
	assertNoError(t, inst.Trigger("pant"))
	assertNoError(t, inst.Trigger("relax"))
	assertEqual(t, j.String(), "cheer cheer farewell greet")
}

func TestDefinition_HistorySetting(t *testing.T) {
	data, err := os.ReadFile("testdata/coffee.yaml")
	assertNoError(t, err)

	var j journal

	decaf := false

	m, err := LoadYAML(data, coffeeFuncs(&j, &decaf))
	assertNoError(t, err)

	inst := newInstance(t, m)
	for range 10 {
		assertNoError(t, inst.Trigger("walk"))
		assertNoError(t, inst.Trigger("stop"))
	}

	assertEqual(t, len(inst.History()), 8)
}

func TestDefinition_UnresolvedNames(t *testing.T) {
	data, err := os.ReadFile("testdata/coffee.yaml")
	assertNoError(t, err)

	_, err = LoadYAML(data, nil)

	var unresolved *ErrUnresolved
	assertTrue(t, errors.As(err, &unresolved))
	assertEqual(t, unresolved.Kind, "hook")
	assertEqual(t, unresolved.Name, g.String("greet"))
}

func TestDefinition_LoadJSON(t *testing.T) {
	data := []byte(`{
		"name": "door",
		"initial": "closed",
		"separator": "/",
		"states": [
			"closed",
			{"name": "open", "initial": "ajar", "children": ["ajar", "wide"]}
		],
		"transitions": [
			{"from": "closed", "to": "open", "event": "push"},
			{"from": "open/ajar", "to": "open/wide", "event": "push"},
			{"from": "open", "to": "closed", "event": "slam"}
		]
	}`)

	m, err := LoadJSON(data, nil)
	assertNoError(t, err)
	assertEqual(t, m.Separator(), "/")

	inst := newInstance(t, m)
	assertNoError(t, inst.Trigger("push"))
	assertEqual(t, inst.Current(), State("open/ajar"))
	assertNoError(t, inst.Trigger("push"))
	assertEqual(t, inst.Current(), State("open/wide"))
	assertNoError(t, inst.Trigger("slam"))
	assertEqual(t, inst.Current(), State("closed"))
}

func TestDefinition_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad yaml", "states: [\n"},
		{"short sequence", "states: [a]\ntransitions:\n  - [a, b]\n"},
		{"unknown target", "initial: a\nstates: [a]\ntransitions:\n  - [a, b, go]\n"},
		{"unknown initial", "initial: x\nstates: [a]\n"},
		{"unknown child initial", "states:\n  - name: a\n    initial: z\n    children: [b]\n"},
		{"unknown guard", "states: [a, b]\ntransitions:\n  - {from: a, to: b, event: go, conditions: [ready]}\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadYAML([]byte(tt.yaml), nil)
			assertError(t, err)
		})
	}
}

func TestDefinition_InputsRule(t *testing.T) {
	def, err := ParseYAML([]byte(`
name: digits
initial: idle
states: [idle, number]
transitions:
  - {from: idle, to: number, event: parse, inputs: ["1", "2"]}
`))
	assertNoError(t, err)

	m, err := def.Build(nil, WithHistorySize(4))
	assertNoError(t, err)

	inst := newInstance(t, m)
	assertFalse(t, inst.CanTrigger("parse", "x"))
	assertNoError(t, inst.Trigger("parse", "2"))
	assertEqual(t, inst.Current(), State("number"))
}
