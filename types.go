package hsm

import "github.com/enetx/g"

type (
	// State is the qualified name of a state, e.g. "caffeinated.running".
	State g.String
	// Event names an occurrence that may trigger a transition.
	Event g.String

	// Callback is a hook run on enter, exit, around a transition or by a state event handler.
	Callback func(ctx *Context) error
	// GuardFunc reports whether a transition rule may fire.
	GuardFunc func(ctx *Context) bool
)

// WhateverState matches any state. It is accepted as the source of a
// transition (a wildcard rule) and rejected everywhere a concrete state is
// required.
const WhateverState State = "*"

const (
	// DefaultSeparator joins a parent's qualified name and a child's local name.
	DefaultSeparator = "."
	// DefaultHistorySize is the capacity of an instance's history stack.
	DefaultHistorySize = 32
)

// Match reports whether a and b name the same state. WhateverState matches anything.
func Match(a, b State) bool {
	return a == WhateverState || b == WhateverState || a == b
}
