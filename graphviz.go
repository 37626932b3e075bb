package hsm

import (
	"github.com/enetx/g"
	"github.com/enetx/g/cmp"
)

// ToDOT renders the instance's definition, including its local states and
// transitions, with the current state and its ancestors highlighted.
func (i *Instance) ToDOT() g.String { return i.view().dot(i.machine.name, i.current) }

func (v view) dot(name string, current State) g.String {
	b := g.NewBuilder()

	b.WriteString("digraph HSM {\n")
	b.WriteString("  compound=true;\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString(g.Format("  label=\"{}\";\n", name))
	b.WriteString(
		"  node [shape=circle, style=filled, fillcolor=\"#f8f8f8\", color=\"#444444\", fontname=\"Helvetica\"];\n",
	)
	b.WriteString("  edge [fontname=\"Helvetica\", fontsize=10];\n\n")

	if initial := v.initial(); initial != "" {
		b.WriteString("  __start [shape=point, style=invis];\n")
		b.WriteString(g.Format("  __start -> \"{}\" [label=\" initial\"];\n\n", initial))
	}

	active := g.NewSet[State]()
	if current != "" {
		if chain, err := v.chain(current); err == nil {
			active = g.SetOf(chain...)
		}
	}

	outgoing := g.NewSet[State]()
	for _, l := range v {
		for key, rules := range l.tab.rules {
			if rules.NotEmpty() {
				outgoing.Insert(key.state)
			}
		}
	}

	states := v.states()
	for _, state := range states {
		if s, ok := v.state(state); ok && s.parent == "" {
			v.dotState(b, s, "  ", current, active, outgoing)
		}
	}

	b.WriteByte('\n')

	grouped := g.NewMap[g.Pair[State, State], g.Slice[g.String]]()

	var order g.Slice[g.Pair[State, State]]

	edge := func(from, to State, label g.String) {
		key := g.Pair[State, State]{Key: from, Value: to}
		if !grouped.Contains(key) {
			order.Push(key)
		}

		grouped.Entry(key).
			AndModify(func(s *g.Slice[g.String]) { s.Push(label) }).
			OrInsert(g.SliceOf(label))
	}

	for _, state := range states {
		for _, event := range v.stateEvents(state) {
			for _, r := range v.bucket(state, event) {
				if r.wildcard() {
					continue
				}

				edge(r.from, r.target(), r.label())
			}
		}
	}

	wildcards := false

	for k := len(v) - 1; k >= 0; k-- {
		tab := v[k].tab
		for _, event := range tab.events {
			for _, r := range tab.wildcards[event] {
				wildcards = true
				edge(WhateverState, r.target(), r.label())
			}
		}
	}

	if wildcards {
		b.WriteString("  \"*\" [shape=plaintext, style=\"\", label=\"*\"];\n")
	}

	for _, pair := range order {
		from, to := pair.Key, pair.Value
		label := grouped[pair].Join("\\n")

		var attrs g.Slice[g.String]
		attrs.Push(g.Format("label=\" {} \"", label))

		switch {
		case label.Contains("(internal)"):
			attrs.Push("style=dotted", "arrowhead=open")
		case label.Contains("(guarded)"):
			attrs.Push("style=dashed", "color=red", "arrowhead=odiamond")
		}

		b.WriteString(g.Format("  \"{}\" -> \"{}\" [{}];\n", from, to, attrs.Join(", ")))
	}

	b.WriteString("\n  subgraph cluster_legend {\n")
	b.WriteString("    label = \"Legend\";\n")
	b.WriteString("    style = dashed;\n")
	b.WriteString(`    key [label=<
      <table border="0" cellpadding="4" cellspacing="0" cellborder="0">
        <tr><td align="right">●</td><td>Leaf state</td></tr>
        <tr><td align="right">□</td><td>Composite state</td></tr>
        <tr><td align="right"><font color="green">◎</font></td><td>Current state</td></tr>
        <tr><td align="right"><font color="gray">◎</font></td><td>Final state</td></tr>
        <tr><td align="right"><font color="red">→</font></td><td>Guarded transition</td></tr>
        <tr><td align="right">⋯</td><td>Internal transition</td></tr>
      </table>
    >, shape=none];`)

	b.WriteString("  }\n")
	b.WriteString("}\n")

	return b.String()
}

func (v view) dotState(b *g.Builder, s *stateDef, indent g.String, current State, active, outgoing g.Set[State]) {
	var attrs g.Slice[g.String]
	attrs.Push(g.Format("label=\"{}\"", s.local))

	composite := s.children.NotEmpty()

	switch {
	case s.name == current:
		attrs.Push("fillcolor=\"#90ee90\"", "shape=doublecircle")
	case composite:
		attrs.Push("shape=box", "style=\"rounded,filled\"")
	case !outgoing.Contains(s.name):
		attrs.Push("fillcolor=\"#d3d3d3\"", "shape=doublecircle")
	}

	var tooltips g.Slice[g.String]

	if s.onEnter.NotEmpty() {
		tooltips.Push("OnEnter")
	}

	if s.onExit.NotEmpty() {
		tooltips.Push("OnExit")
	}

	if s.behavior != nil {
		tooltips.Push("Behavior")
	}

	if len(s.handlers) > 0 {
		events := make(g.Slice[Event], 0, len(s.handlers))
		for event := range s.handlers {
			events.Push(event)
		}

		events.SortBy(cmp.Cmp)

		for _, event := range events {
			tooltips.Push(g.Format("On {}", event))
		}
	}

	if tooltips.NotEmpty() {
		attrs.Push(g.Format("tooltip=\"{}\"", tooltips.Join("\\n")))
	}

	if !composite {
		b.WriteString(g.Format("{}\"{}\" [{}];\n", indent, s.name, attrs.Join(", ")))
		return
	}

	b.WriteString(g.Format("{}subgraph \"cluster_{}\" ", indent, s.name))
	b.WriteString("{\n")
	b.WriteString(g.Format("{}  label=\"{}\";\n", indent, s.local))

	if active.Contains(s.name) {
		b.WriteString(indent + "  color=\"#2e8b57\";\n")
	} else {
		b.WriteString(indent + "  style=dashed;\n")
	}

	b.WriteString(g.Format("{}  \"{}\" [{}];\n", indent, s.name, attrs.Join(", ")))

	for _, child := range s.children {
		if c, ok := v.state(child); ok {
			v.dotState(b, c, indent+"  ", current, active, outgoing)
		}
	}

	b.WriteString(indent + "}\n")
}

// stateEvents lists, sorted, the events with rules registered exactly on state.
func (v view) stateEvents(state State) g.Slice[Event] {
	found := g.NewSet[Event]()

	for _, l := range v {
		for key := range l.tab.rules {
			if key.state == state {
				found.Insert(key.event)
			}
		}
	}

	events := found.ToSlice()
	events.SortBy(cmp.Cmp)

	return events
}

func (r *rule) target() State {
	if r.internal {
		return r.from
	}

	return r.to
}

func (r *rule) label() g.String {
	label := g.String(r.event)

	if r.internal {
		label += " (internal)"
	}

	if r.guards.NotEmpty() {
		label += " (guarded)"
	}

	return label
}
