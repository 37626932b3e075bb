package hsm_test

import (
	"fmt"
	"testing"

	. "github.com/enetx/hsm"
)

// calculator evaluates reverse polish notation one character at a time.
type calculator struct {
	stack  []float64
	result float64
	inst   *Instance
}

func chars(s string) []any {
	out := make([]any, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}

	return out
}

func calc(ctx *Context) *calculator { return ctx.Entity.(*calculator) }

func (c *calculator) push(v float64) { c.stack = append(c.stack, v) }

func (c *calculator) pop() float64 {
	v := c.stack[len(c.stack)-1]
	c.stack = c.stack[:len(c.stack)-1]

	return v
}

func digit(ctx *Context) float64 { return float64(ctx.Input.(string)[0] - '0') }

func newCalculator(t *testing.T) *calculator {
	t.Helper()

	const (
		digits = "0123456789"
		spaces = " \t\n"
	)

	m, err := Define("calculator").
		State("initial", Initial()).
		State("number").
		Transition("initial", "parse", "number", OnInput(chars(digits)...), Action(func(ctx *Context) error {
			calc(ctx).push(digit(ctx))
			return nil
		})).
		Internal("number", "parse", OnInput(chars(digits)...), Action(func(ctx *Context) error {
			c := calc(ctx)
			c.push(c.pop()*10 + digit(ctx))
			return nil
		})).
		Transition("number", "parse", "initial", OnInput(chars(spaces)...)).
		Internal("initial", "parse", OnInput(chars(spaces)...)).
		Internal("initial", "parse", OnInput(chars("+-*/")...), Action(func(ctx *Context) error {
			c := calc(ctx)
			y, x := c.pop(), c.pop()

			switch ctx.Input.(string) {
			case "+":
				c.push(x + y)
			case "-":
				c.push(x - y)
			case "*":
				c.push(x * y)
			case "/":
				c.push(x / y)
			}

			return nil
		})).
		Internal("initial", "parse", OnInput("="), Action(func(ctx *Context) error {
			calc(ctx).result = calc(ctx).pop()
			return nil
		})).
		Build()
	assertNoError(t, err)

	c := new(calculator)
	c.inst, err = m.NewInstance(c)
	assertNoError(t, err)

	return c
}

func (c *calculator) calculate(expr string) (float64, error) {
	for _, r := range expr {
		if err := c.inst.Trigger("parse", string(r)); err != nil {
			return 0, fmt.Errorf("parse %q: %w", r, err)
		}
	}

	return c.result, nil
}

func TestRPN_Calculator(t *testing.T) {
	c := newCalculator(t)

	tests := []struct {
		expr string
		want float64
	}{
		{" 167 3 2 2 * * * 1 - =", 2003},
		{"    167 3 2 2 * * * 1 - 2 / =", 1001.5},
		{"    3   5 6 +  * =", 33},
		{"        3    4       +     =", 7},
		{"2 4 / 5 6 - * =", -0.5},
	}

	for _, tt := range tests {
		got, err := c.calculate(tt.expr)
		assertNoError(t, err)
		assertEqual(t, got, tt.want)
		assertEqual(t, c.inst.Current(), State("initial"))
		assertEqual(t, len(c.stack), 0)
	}
}

func TestRPN_RejectsUnknownInput(t *testing.T) {
	c := newCalculator(t)

	_, err := c.calculate("1 x")
	assertError(t, err)
}
