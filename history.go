package hsm

import "github.com/enetx/g"

// History is a bounded stack of exited leaf states. Pushing onto a full
// history drops the oldest entry.
type History struct {
	buf  g.Slice[State]
	head int
	size int
}

// NewHistory returns an empty history holding at most capacity states.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}

	return &History{buf: make(g.Slice[State], capacity)}
}

// Push records s as the most recent entry.
func (h *History) Push(s State) {
	n := len(h.buf)
	h.buf[(h.head+h.size)%n] = s

	if h.size < n {
		h.size++
		return
	}

	h.head = (h.head + 1) % n
}

// Pop removes and returns the most recent entry.
func (h *History) Pop() g.Option[State] {
	if h.size == 0 {
		return g.None[State]()
	}

	h.size--
	idx := (h.head + h.size) % len(h.buf)
	s := h.buf[idx]
	h.buf[idx] = ""

	return g.Some(s)
}

// Peek returns the most recent entry without removing it.
func (h *History) Peek() g.Option[State] {
	if h.size == 0 {
		return g.None[State]()
	}

	return g.Some(h.buf[(h.head+h.size-1)%len(h.buf)])
}

func (h *History) Len() int { return h.size }
func (h *History) Cap() int { return len(h.buf) }

// Items returns the entries from oldest to most recent.
func (h *History) Items() g.Slice[State] {
	out := make(g.Slice[State], 0, h.size)
	for k := range h.size {
		out = append(out, h.buf[(h.head+k)%len(h.buf)])
	}

	return out
}

// Clear removes every entry.
func (h *History) Clear() {
	clear(h.buf)
	h.head, h.size = 0, 0
}
