package hsm

import "github.com/enetx/g"

// stateDef is a registered state. The parent is referenced by name only.
type stateDef struct {
	name     State
	local    State
	parent   State
	children g.Slice[State]
	initial  State
	onEnter  g.Slice[Callback]
	onExit   g.Slice[Callback]
	handlers g.Map[Event, g.Slice[Callback]]
	behavior Behavior
}

func (s *stateDef) clone() *stateDef {
	c := *s
	c.children = s.children.Clone()
	c.onEnter = s.onEnter.Clone()
	c.onExit = s.onExit.Clone()
	c.handlers = g.NewMap[Event, g.Slice[Callback]]()

	for event, cbs := range s.handlers {
		c.handlers[event] = cbs.Clone()
	}

	return &c
}

// StateInfo is a read-only description of a registered state.
type StateInfo struct {
	Name     State
	Local    State
	Parent   State
	Children g.Slice[State]
	Initial  State
}

func (s *stateDef) info() StateInfo {
	return StateInfo{
		Name:     s.name,
		Local:    s.local,
		Parent:   s.parent,
		Children: s.children.Clone(),
		Initial:  s.initial,
	}
}

type registry struct {
	states  g.Map[State, *stateDef]
	order   g.Slice[State]
	initial State
	sep     State
}

func newRegistry(sep State) *registry {
	return &registry{states: g.NewMap[State, *stateDef](), sep: sep}
}

// layer is one level of definitions: the machine's, or an instance overlay.
type layer struct {
	reg *registry
	tab *table
}

func newLayer(sep State) *layer { return &layer{reg: newRegistry(sep), tab: newTable()} }

// view resolves states and rules through layers ordered from most to least
// specific. Writes always go to the first layer.
type view []*layer

func (v view) top() *layer { return v[0] }

func (v view) state(name State) (*stateDef, bool) {
	for _, l := range v {
		if s, ok := l.reg.states[name]; ok {
			return s, true
		}
	}

	return nil, false
}

func (v view) has(name State) bool {
	_, ok := v.state(name)
	return ok
}

func (v view) size() int {
	n := 0
	for _, l := range v {
		n += len(l.reg.states)
	}

	return n
}

// states lists every visible state, shared states first, each in registration order.
func (v view) states() g.Slice[State] {
	seen := g.NewSet[State]()

	var out g.Slice[State]

	for k := len(v) - 1; k >= 0; k-- {
		for _, name := range v[k].reg.order {
			if !seen.Contains(name) {
				seen.Insert(name)
				out.Push(name)
			}
		}
	}

	return out
}

func (v view) initial() State {
	for _, l := range v {
		if l.reg.initial != "" {
			return l.reg.initial
		}
	}

	return ""
}

// own returns the first layer's copy of a state, copying it from a lower layer on first write.
func (v view) own(name State) *stateDef {
	top := v.top().reg
	if s, ok := top.states[name]; ok {
		return s
	}

	s, ok := v.state(name)
	if !ok {
		return nil
	}

	c := s.clone()
	top.states[name] = c

	return c
}

func (v view) addState(name State, cfg *stateConfig) (*stateDef, error) {
	if name == WhateverState {
		return nil, ErrWhateverState
	}

	if name == "" {
		return nil, &ErrUnknownState{State: name}
	}

	top := v.top().reg
	qualified := name

	if cfg.parent != "" {
		if !v.has(cfg.parent) {
			return nil, &ErrUnknownState{State: cfg.parent}
		}

		qualified = cfg.parent + top.sep + name
	}

	def := &stateDef{
		name:     qualified,
		local:    name,
		parent:   cfg.parent,
		onEnter:  cfg.onEnter,
		onExit:   cfg.onExit,
		handlers: cfg.handlers,
		behavior: cfg.behavior,
	}

	existing, exists := v.state(qualified)
	switch {
	case exists && !cfg.force:
		return nil, &ErrDuplicateState{State: qualified}
	case exists:
		def.children = existing.children.Clone()
		def.initial = existing.initial
		if _, local := top.states[qualified]; !local {
			top.order.Push(qualified)
		}
	default:
		top.order.Push(qualified)
		if cfg.parent != "" {
			parent := v.own(cfg.parent)
			parent.children.Push(qualified)
		}
	}

	top.states[qualified] = def

	if cfg.initial {
		if err := v.setInitial(qualified, cfg.force); err != nil {
			return def, err
		}
	}

	return def, nil
}

func (v view) setInitial(name State, force bool) error {
	s, ok := v.state(name)
	if !ok {
		return &ErrUnknownState{State: name}
	}

	if s.parent == "" {
		current := v.initial()
		if current != "" && current != name && !force {
			return &ErrAlreadyHasInitial{Initial: current, Requested: name}
		}

		v.top().reg.initial = name

		return nil
	}

	parent, ok := v.state(s.parent)
	if !ok {
		return &ErrBrokenHierarchy{State: name}
	}

	if parent.initial != "" && parent.initial != name && !force {
		return &ErrAlreadyHasInitial{Parent: parent.name, Initial: parent.initial, Requested: name}
	}

	v.own(s.parent).initial = name

	return nil
}

// chain returns name and its ancestors, root first.
func (v view) chain(name State) (g.Slice[State], error) {
	limit := v.size()

	var up g.Slice[State]

	for current := name; current != ""; {
		s, ok := v.state(current)
		if !ok || len(up) > limit {
			return nil, &ErrBrokenHierarchy{State: name}
		}

		up.Push(current)
		current = s.parent
	}

	for i, j := 0, len(up)-1; i < j; i, j = i+1, j-1 {
		up[i], up[j] = up[j], up[i]
	}

	return up, nil
}

// leaf follows initial children from name down to a state without one.
func (v view) leaf(name State) (State, error) {
	current := name
	for range v.size() + 1 {
		s, ok := v.state(current)
		if !ok {
			return "", &ErrBrokenHierarchy{State: name}
		}

		if s.initial == "" {
			return current, nil
		}

		current = s.initial
	}

	return "", &ErrBrokenHierarchy{State: name}
}

// lca returns the deepest state that is an ancestor-or-self of both a and b, or "" when they share none.
func (v view) lca(a, b State) (State, error) {
	ca, err := v.chain(a)
	if err != nil {
		return "", err
	}

	cb, err := v.chain(b)
	if err != nil {
		return "", err
	}

	var common State

	for i := 0; i < len(ca) && i < len(cb) && ca[i] == cb[i]; i++ {
		common = ca[i]
	}

	return common, nil
}

// behavior returns the behavior of the nearest ancestor-or-self of name that has one.
func (v view) behavior(name State) Behavior {
	for current := name; current != ""; {
		s, ok := v.state(current)
		if !ok {
			return nil
		}

		if s.behavior != nil {
			return s.behavior
		}

		current = s.parent
	}

	return nil
}
