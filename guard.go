package hsm

import (
	"fmt"

	"github.com/enetx/g"
)

// Guard is one condition of a transition rule. The rule passes only if Fn
// returns Want for every guard. Name appears in rejection errors.
type Guard struct {
	Name g.String
	Fn   GuardFunc
	Want bool
}

func (gd Guard) String() string {
	name := string(gd.Name)
	if name == "" {
		name = "guard"
	}

	if !gd.Want {
		return "!" + name
	}

	return name
}

// When adds a guard that must return true.
func When(fn GuardFunc) TransitionOption {
	return Guards(Guard{Fn: fn, Want: true})
}

// Unless adds a guard that must return false.
func Unless(fn GuardFunc) TransitionOption {
	return Guards(Guard{Fn: fn, Want: false})
}

// Guards adds guards evaluated in order. Guards without a function are ignored.
func Guards(guards ...Guard) TransitionOption {
	return func(c *transitionConfig) {
		for _, gd := range guards {
			if gd.Fn != nil {
				c.guards.Push(gd)
			}
		}
	}
}

// OnInput restricts the rule to signals whose input equals one of values.
// Values must be comparable.
func OnInput(values ...any) TransitionOption {
	accepted := g.SliceOf(values...)

	return Guards(Guard{
		Name: g.Format("input in {}", accepted),
		Want: true,
		Fn: func(ctx *Context) bool {
			for _, v := range accepted {
				if v == ctx.Input {
					return true
				}
			}

			return false
		},
	})
}

func (i *Instance) check(gd Guard) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ErrCallback{HookType: "Guard", State: i.ctx.State, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	return gd.Fn(i.ctx) == gd.Want, nil
}

// pick returns the first rule whose guards all pass, in registration order.
// When none passes it returns nil and the guard that rejected each rule.
func (i *Instance) pick(rules g.Slice[*rule]) (*rule, g.Slice[g.String], error) {
	var rejected g.Slice[g.String]

candidates:
	for _, r := range rules {
		for _, gd := range r.guards {
			ok, err := i.check(gd)
			if err != nil {
				return nil, nil, err
			}

			if !ok {
				rejected.Push(g.String(gd.String()))
				continue candidates
			}
		}

		return r, nil, nil
	}

	return nil, rejected, nil
}
