package engine

import "editcore/pkg/collection"

// Compile-time contract assertion ensuring the log satisfies the behavior-facing interface.
var _ collection.History[struct{}] = (*historyLog[struct{}])(nil)

// historyLog is the bounded snapshot log backing undo/redo. Entries before
// the pointer are undo-able, entries after it are redo-able. Recording past
// the limit drops the oldest entry, so the earliest undo step eventually
// becomes unreachable instead of the log growing without bound.
type historyLog[T any] struct {
	limit   int
	entries []collection.HistorySnapshot[T]
	index   int
}

func newHistoryLog[T any](limit int, seed collection.HistorySnapshot[T]) *historyLog[T] {
	if limit <= 0 {
		limit = collection.DefaultHistoryLimit
	}
	return &historyLog[T]{
		limit:   limit,
		entries: []collection.HistorySnapshot[T]{seed},
	}
}

// Record truncates the redo tail, appends the snapshot and advances the
// pointer, dropping the oldest entry when the log exceeds its limit.
func (h *historyLog[T]) Record(snap collection.HistorySnapshot[T]) {
	h.entries = append(h.entries[:h.index+1], snap)
	h.index++
	if len(h.entries) > h.limit {
		drop := len(h.entries) - h.limit
		h.entries = append([]collection.HistorySnapshot[T](nil), h.entries[drop:]...)
		h.index -= drop
	}
}

// Undo steps the pointer back and returns the snapshot to restore. Reports
// false at the start of history.
func (h *historyLog[T]) Undo() (collection.HistorySnapshot[T], bool) {
	if h.index <= 0 {
		var zero collection.HistorySnapshot[T]
		return zero, false
	}
	h.index--
	return h.entries[h.index], true
}

// Redo steps the pointer forward, symmetric to Undo.
func (h *historyLog[T]) Redo() (collection.HistorySnapshot[T], bool) {
	if h.index >= len(h.entries)-1 {
		var zero collection.HistorySnapshot[T]
		return zero, false
	}
	h.index++
	return h.entries[h.index], true
}

func (h *historyLog[T]) CanUndo() bool {
	return h.index > 0
}

func (h *historyLog[T]) CanRedo() bool {
	return h.index < len(h.entries)-1
}

// Reset discards the log and reseeds it, marking a new agreement point after
// load or baseline capture.
func (h *historyLog[T]) Reset(seed collection.HistorySnapshot[T]) {
	h.entries = []collection.HistorySnapshot[T]{seed}
	h.index = 0
}

func (h *historyLog[T]) Len() int {
	return len(h.entries)
}
