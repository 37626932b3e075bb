package hsm

import (
	"encoding/json"
	"fmt"

	"github.com/enetx/g"
	"gopkg.in/yaml.v3"
)

// Definition is a declarative machine description, loadable from YAML or JSON.
//
//	name: coffee
//	initial: standing
//	states:
//	  - standing
//	  - name: caffeinated
//	    initial: dithering
//	    children: [dithering, running]
//	transitions:
//	  - {from: "*", to: caffeinated, event: drink}
//	  - {from: caffeinated, to: caffeinated.running, event: walk, conditions: ["!tired"]}
//
// Hook and guard names are bound to functions by a Resolver when the
// definition is built. A condition prefixed with "!" must be false.
type Definition struct {
	Name        string                 `yaml:"name"                json:"name"`
	Initial     State                  `yaml:"initial,omitempty"   json:"initial,omitempty"`
	History     int                    `yaml:"history,omitempty"   json:"history,omitempty"`
	Separator   string                 `yaml:"separator,omitempty" json:"separator,omitempty"`
	States      []StateDefinition      `yaml:"states"              json:"states"`
	Transitions []TransitionDefinition `yaml:"transitions"         json:"transitions"`
}

// StateDefinition describes a state and its children. Initial names a child by
// its local name. A bare string is accepted in place of the mapping.
type StateDefinition struct {
	Name     State             `yaml:"name"               json:"name"`
	Initial  State             `yaml:"initial,omitempty"  json:"initial,omitempty"`
	OnEnter  g.String          `yaml:"on_enter,omitempty" json:"on_enter,omitempty"`
	OnExit   g.String          `yaml:"on_exit,omitempty"  json:"on_exit,omitempty"`
	Children []StateDefinition `yaml:"children,omitempty" json:"children,omitempty"`
}

// TransitionDefinition describes one rule. Without To, or with Internal set,
// the rule is internal. A [from, to, event] sequence is accepted in YAML.
type TransitionDefinition struct {
	From       State      `yaml:"from"                 json:"from"`
	To         State      `yaml:"to,omitempty"         json:"to,omitempty"`
	Event      Event      `yaml:"event"                json:"event"`
	Internal   bool       `yaml:"internal,omitempty"   json:"internal,omitempty"`
	Conditions []g.String `yaml:"conditions,omitempty" json:"conditions,omitempty"`
	Inputs     []string   `yaml:"inputs,omitempty"     json:"inputs,omitempty"`
	Before     g.String   `yaml:"before,omitempty"     json:"before,omitempty"`
	Action     g.String   `yaml:"action,omitempty"     json:"action,omitempty"`
	After      g.String   `yaml:"after,omitempty"      json:"after,omitempty"`
}

func (s *StateDefinition) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*s = StateDefinition{Name: State(node.Value)}
		return nil
	}

	type plain StateDefinition

	return node.Decode((*plain)(s))
}

func (s *StateDefinition) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*s = StateDefinition{Name: State(name)}
		return nil
	}

	type plain StateDefinition

	return json.Unmarshal(data, (*plain)(s))
}

func (t *TransitionDefinition) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.SequenceNode {
		type plain TransitionDefinition
		return node.Decode((*plain)(t))
	}

	var parts []string
	if err := node.Decode(&parts); err != nil {
		return err
	}

	if len(parts) != 3 {
		return fmt.Errorf("hsm: line %d: transition sequence needs [from, to, event], got %d items",
			node.Line, len(parts))
	}

	*t = TransitionDefinition{From: State(parts[0]), To: State(parts[1]), Event: Event(parts[2])}

	return nil
}

// Resolver binds guard and hook names used by a Definition.
type Resolver interface {
	Guard(name g.String) (GuardFunc, bool)
	Hook(name g.String) (Callback, bool)
}

// Funcs is a Resolver backed by maps.
type Funcs struct {
	Guards g.Map[g.String, GuardFunc]
	Hooks  g.Map[g.String, Callback]
}

func (f Funcs) Guard(name g.String) (GuardFunc, bool) {
	fn, ok := f.Guards[name]
	return fn, ok
}

func (f Funcs) Hook(name g.String) (Callback, bool) {
	fn, ok := f.Hooks[name]
	return fn, ok
}

// ParseYAML decodes a definition without building it.
func ParseYAML(data []byte) (*Definition, error) {
	var def Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("hsm: parse yaml definition: %w", err)
	}

	return &def, nil
}

// ParseJSON decodes a definition without building it.
func ParseJSON(data []byte) (*Definition, error) {
	var def Definition
	if err := json.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("hsm: parse json definition: %w", err)
	}

	return &def, nil
}

// LoadYAML parses and builds a YAML definition.
func LoadYAML(data []byte, r Resolver, opts ...MachineOption) (*Machine, error) {
	def, err := ParseYAML(data)
	if err != nil {
		return nil, err
	}

	return def.Build(r, opts...)
}

// LoadJSON parses and builds a JSON definition.
func LoadJSON(data []byte, r Resolver, opts ...MachineOption) (*Machine, error) {
	def, err := ParseJSON(data)
	if err != nil {
		return nil, err
	}

	return def.Build(r, opts...)
}

// Build registers the states depth-first, then the transitions in order, on a
// new machine. Options passed here override the definition's own settings.
func (d *Definition) Build(r Resolver, opts ...MachineOption) (*Machine, error) {
	if r == nil {
		r = Funcs{}
	}

	var settings []MachineOption
	if d.Separator != "" {
		settings = append(settings, WithSeparator(d.Separator))
	}

	if d.History > 0 {
		settings = append(settings, WithHistorySize(d.History))
	}

	m := NewMachine(d.Name, append(settings, opts...)...)

	for _, s := range d.States {
		if err := d.buildState(m, r, s, ""); err != nil {
			return nil, err
		}
	}

	if d.Initial != "" {
		if err := m.SetInitial(d.Initial, false); err != nil {
			return nil, err
		}
	}

	for k, t := range d.Transitions {
		if err := d.buildTransition(m, r, t); err != nil {
			return nil, fmt.Errorf("hsm: transition %d (%s): %w", k, t.Event, err)
		}
	}

	return m, nil
}

func (d *Definition) buildState(m *Machine, r Resolver, s StateDefinition, parent State) error {
	var opts []StateOption
	if parent != "" {
		opts = append(opts, Parent(parent))
	}

	for _, hook := range []struct {
		name g.String
		opt  func(Callback) StateOption
	}{{s.OnEnter, OnEnter}, {s.OnExit, OnExit}} {
		if hook.name == "" {
			continue
		}

		cb, ok := r.Hook(hook.name)
		if !ok {
			return &ErrUnresolved{Kind: "hook", Name: hook.name}
		}

		opts = append(opts, hook.opt(cb))
	}

	if err := m.AddState(s.Name, opts...); err != nil {
		return err
	}

	name := s.Name
	if parent != "" {
		name = parent + State(m.Separator()) + s.Name
	}

	for _, child := range s.Children {
		if err := d.buildState(m, r, child, name); err != nil {
			return err
		}
	}

	if s.Initial != "" {
		return m.SetInitial(name+State(m.Separator())+s.Initial, false)
	}

	return nil
}

func (d *Definition) buildTransition(m *Machine, r Resolver, t TransitionDefinition) error {
	var opts []TransitionOption

	guards := make([]Guard, 0, len(t.Conditions))

	for _, cond := range t.Conditions {
		name, want := cond, true
		if name != "" && name[0] == '!' {
			name, want = name[1:], false
		}

		fn, ok := r.Guard(name)
		if !ok {
			return &ErrUnresolved{Kind: "guard", Name: name}
		}

		guards = append(guards, Guard{Name: name, Fn: fn, Want: want})
	}

	opts = append(opts, Guards(guards...))

	if len(t.Inputs) > 0 {
		inputs := make([]any, len(t.Inputs))
		for k, in := range t.Inputs {
			inputs[k] = in
		}

		opts = append(opts, OnInput(inputs...))
	}

	for _, hook := range []struct {
		name g.String
		opt  func(Callback) TransitionOption
	}{{t.Before, Before}, {t.Action, Action}, {t.After, After}} {
		if hook.name == "" {
			continue
		}

		cb, ok := r.Hook(hook.name)
		if !ok {
			return &ErrUnresolved{Kind: "hook", Name: hook.name}
		}

		opts = append(opts, hook.opt(cb))
	}

	if t.Internal || t.To == "" {
		return m.AddInternalTransition(t.From, t.Event, opts...)
	}

	return m.AddTransition(t.From, t.Event, t.To, opts...)
}
