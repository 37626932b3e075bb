package hsm

import (
	"slices"

	"github.com/enetx/g"
	"github.com/enetx/g/cmp"
)

type ruleKey struct {
	state State
	event Event
}

// rule is one candidate transition for a (state, event) key. An internal rule has no target.
type rule struct {
	from     State
	to       State
	event    Event
	internal bool
	guards   g.Slice[Guard]
	before   Callback
	action   Callback
	after    Callback
}

func (r *rule) wildcard() bool { return r.from == WhateverState }

type table struct {
	rules     g.Map[ruleKey, g.Slice[*rule]]
	wildcards g.Map[Event, g.Slice[*rule]]
	events    g.Slice[Event]
}

func newTable() *table {
	return &table{
		rules:     g.NewMap[ruleKey, g.Slice[*rule]](),
		wildcards: g.NewMap[Event, g.Slice[*rule]](),
	}
}

func (t *table) add(r *rule) {
	if r.wildcard() {
		if _, ok := t.wildcards[r.event]; !ok {
			t.events.Push(r.event)
		}

		t.wildcards[r.event] = append(t.wildcards[r.event], r)

		return
	}

	key := ruleKey{state: r.from, event: r.event}
	t.rules[key] = append(t.rules[key], r)
}

// expand appends every wildcard rule to the bucket of every listed state that
// does not hold it yet. States registered later receive wildcard rules only
// when another transition is registered after them.
func (t *table) expand(states g.Slice[State]) {
	for _, event := range t.events {
		for _, r := range t.wildcards[event] {
			for _, state := range states {
				key := ruleKey{state: state, event: event}
				if !slices.Contains(t.rules[key], r) {
					t.rules[key] = append(t.rules[key], r)
				}
			}
		}
	}
}

func (v view) addRule(r *rule, unknown func(State) error) error {
	if r.from != WhateverState && !v.has(r.from) {
		return unknown(r.from)
	}

	if !r.internal {
		if r.to == WhateverState {
			return ErrWhateverState
		}

		if !v.has(r.to) {
			return unknown(r.to)
		}
	}

	tab := v.top().tab
	tab.add(r)
	tab.expand(v.states())

	return nil
}

func newRule(from State, event Event, to State, internal bool, opts []TransitionOption) *rule {
	cfg := newTransitionConfig(opts)

	return &rule{
		from:     from,
		to:       to,
		event:    event,
		internal: internal,
		guards:   cfg.guards,
		before:   cfg.before,
		action:   cfg.action,
		after:    cfg.after,
	}
}

// bucket returns the rules registered for exactly (state, event), most specific layer first.
func (v view) bucket(state State, event Event) g.Slice[*rule] {
	var out g.Slice[*rule]

	for _, l := range v {
		out = append(out, l.tab.rules[ruleKey{state: state, event: event}]...)
	}

	return out
}

// lookup returns the candidate rules for event from leaf. A level without
// candidates defers to its parent while propagate holds; the first level that
// has candidates is final.
func (v view) lookup(leaf State, event Event, propagate bool) g.Slice[*rule] {
	for current := leaf; current != ""; {
		if rules := v.bucket(current, event); len(rules) > 0 {
			return rules
		}

		s, ok := v.state(current)
		if !ok || !propagate {
			return nil
		}

		current = s.parent
	}

	return nil
}

// events lists the events with at least one rule on leaf or its ancestors.
func (v view) events(leaf State) g.Slice[Event] {
	chain, err := v.chain(leaf)
	if err != nil {
		return nil
	}

	onChain := g.SetOf(chain...)
	found := g.NewSet[Event]()

	for _, l := range v {
		for key, rules := range l.tab.rules {
			if len(rules) > 0 && onChain.Contains(key.state) {
				found.Insert(key.event)
			}
		}
	}

	events := found.ToSlice()
	events.SortBy(cmp.Cmp)

	return events
}
