package hsm

// Behavior is an object bound to a state. It is notified when the state is
// entered or exited, and Instance.Behavior returns the behavior of the nearest
// active state that has one, so callers can type-assert it to whatever
// capability interface the state implements.
type Behavior interface {
	Enter(ctx *Context) error
	Exit(ctx *Context) error
}

// BaseBehavior implements Behavior with no-op hooks. Embed it when only capability methods matter.
type BaseBehavior struct{}

func (BaseBehavior) Enter(*Context) error { return nil }
func (BaseBehavior) Exit(*Context) error  { return nil }
