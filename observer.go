package hsm

import (
	"fmt"
	"time"
)

// Kind classifies what a dispatch did.
type Kind int

const (
	// KindNone marks a dispatch that moved nothing, usually because it failed.
	KindNone Kind = iota
	KindExternal
	KindSelf
	KindInternal
	KindRevert
	KindSwitch
	KindInit
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindExternal:
		return "external"
	case KindSelf:
		return "self"
	case KindInternal:
		return "internal"
	case KindRevert:
		return "revert"
	case KindSwitch:
		return "switch"
	case KindInit:
		return "init"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// DispatchRecord describes one finished dispatch, revert, switch or initialization.
type DispatchRecord struct {
	Machine  string
	Event    Event
	From     State
	To       State
	Kind     Kind
	Duration time.Duration
	Err      error
}

// Observer is notified after every dispatch of every instance of a machine.
// It runs on the dispatching goroutine.
type Observer interface {
	OnDispatch(rec DispatchRecord)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(rec DispatchRecord)

func (f ObserverFunc) OnDispatch(rec DispatchRecord) { f(rec) }

func (m *Machine) report(rec DispatchRecord) {
	if rec.Err != nil {
		m.logger.Warn("hsm: dispatch failed",
			"machine", m.name,
			"event", rec.Event,
			"from", rec.From,
			"error", rec.Err,
		)
	} else {
		m.logger.Debug("hsm: dispatch",
			"machine", m.name,
			"event", rec.Event,
			"from", rec.From,
			"to", rec.To,
			"kind", rec.Kind.String(),
			"duration", rec.Duration,
		)
	}

	for _, o := range m.observers {
		o.OnDispatch(rec)
	}
}
