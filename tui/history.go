// Package tui provides a Bubble Tea terminal UI for playing a case: a
// scrolling backlog, a dialog stage that types lines out, a status bar and
// an input line.
package tui

// ring keeps the most recent values, up to max.
type ring[T any] struct {
	items []T
	max   int
}

func newRing[T any](max int) ring[T] {
	return ring[T]{items: make([]T, 0, max), max: max}
}

func (r *ring[T]) push(v T) {
	r.items = append(r.items, v)
	if over := len(r.items) - r.max; over > 0 {
		r.items = append(r.items[:0], r.items[over:]...)
	}
}

func (r *ring[T]) len() int { return len(r.items) }

func (r *ring[T]) last() (T, bool) {
	var zero T
	if len(r.items) == 0 {
		return zero, false
	}
	return r.items[len(r.items)-1], true
}

// History is the command history, navigated with a cursor.
type History struct {
	ring[string]
	cursor int // -1 = not navigating, 0..len-1 = position in entries
}

// NewHistory creates a history buffer with the given maximum size.
func NewHistory(max int) *History {
	return &History{ring: newRing[string](max), cursor: -1}
}

// Push adds a command to history. Consecutive duplicates are skipped.
func (h *History) Push(cmd string) {
	if last, ok := h.last(); ok && last == cmd {
		return
	}
	h.push(cmd)
}

// Prev returns the previous (older) history entry.
// Returns ("", false) if history is empty.
func (h *History) Prev() (string, bool) {
	if h.len() == 0 {
		return "", false
	}
	if h.cursor == -1 {
		h.cursor = h.len() - 1
	} else if h.cursor > 0 {
		h.cursor--
	}
	return h.items[h.cursor], true
}

// Next returns the next (newer) history entry, or ("", false) when moving
// past the newest back to fresh input.
func (h *History) Next() (string, bool) {
	if h.cursor == -1 {
		return "", false
	}
	h.cursor++
	if h.cursor >= h.len() {
		h.cursor = -1
		return "", false
	}
	return h.items[h.cursor], true
}

// ResetCursor stops navigating.
func (h *History) ResetCursor() {
	h.cursor = -1
}
