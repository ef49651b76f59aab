// Package history keeps a bounded, linear undo/redo sequence of snapshots.
package history

// DefaultLimit is the number of entries kept when no limit is configured.
const DefaultLimit = 100

// History is a linear sequence of snapshots with a cursor. The cursor always
// addresses a valid entry. Pushing after an undo discards the redo branch.
// History is not safe for concurrent use; owners serialise access.
type History[T any] struct {
	entries []T
	index   int
	limit   int
}

// New returns a history holding initial as its only entry. A limit <= 0 keeps
// every entry.
func New[T any](initial T, limit int) *History[T] {
	return &History[T]{entries: []T{initial}, limit: limit}
}

// Current returns the entry under the cursor.
func (h *History[T]) Current() T {
	return h.entries[h.index]
}

// Push truncates any redo branch, appends v and moves the cursor onto it.
// When the limit is exceeded the oldest entries are dropped.
func (h *History[T]) Push(v T) {
	h.entries = append(h.entries[:h.index+1], v)
	if h.limit > 0 && len(h.entries) > h.limit {
		drop := len(h.entries) - h.limit
		clear(h.entries[:drop])
		h.entries = h.entries[drop:]
	}
	h.index = len(h.entries) - 1
}

// Undo moves the cursor back one entry. It reports false at the first entry.
func (h *History[T]) Undo() (T, bool) {
	if !h.CanUndo() {
		return h.Current(), false
	}
	h.index--
	return h.Current(), true
}

// Redo moves the cursor forward one entry. It reports false at the last entry.
func (h *History[T]) Redo() (T, bool) {
	if !h.CanRedo() {
		return h.Current(), false
	}
	h.index++
	return h.Current(), true
}

// CanUndo reports whether Undo would move the cursor.
func (h *History[T]) CanUndo() bool { return h.index > 0 }

// CanRedo reports whether Redo would move the cursor.
func (h *History[T]) CanRedo() bool { return h.index < len(h.entries)-1 }

// Reset collapses the history to the single entry v.
func (h *History[T]) Reset(v T) {
	clear(h.entries)
	h.entries = append(h.entries[:0], v)
	h.index = 0
}

// Replace overwrites the entry under the cursor without touching the rest of
// the sequence.
func (h *History[T]) Replace(v T) {
	h.entries[h.index] = v
}

// Len returns the number of entries.
func (h *History[T]) Len() int { return len(h.entries) }

// Index returns the cursor position.
func (h *History[T]) Index() int { return h.index }

// Limit returns the configured bound; zero or less means unbounded.
func (h *History[T]) Limit() int { return h.limit }
