package collection

import "time"

// Baseline is a full snapshot of the collection captured at the last point
// client and server were known to agree: after load, after a successful save,
// or after an explicit commit. Ordinary dispatch never mutates it; only the
// change-tracking actions replace it wholesale.
type Baseline[T any] struct {
	PersistedItems []T
	DraftItems     []T
	Timestamp      time.Time
	Version        int
}

// Clone deep-copies a baseline using the supplied comparators.
func (b Baseline[T]) Clone(c Comparators[T]) Baseline[T] {
	return Baseline[T]{
		PersistedItems: c.CloneItems(b.PersistedItems),
		DraftItems:     c.CloneItems(b.DraftItems),
		Timestamp:      b.Timestamp,
		Version:        b.Version,
	}
}

// State is the mutable working state of one collection. The engine passes a
// transactional copy to behavior handlers and swaps it in only when every
// handler succeeds; consumers never see this type directly, they receive
// Snapshot values.
type State[T any] struct {
	ContextID      string
	PersistedItems []T
	DraftItems     []T
	Baseline       Baseline[T]
	// SelectedItemID is the focused item id, empty when nothing is selected.
	SelectedItemID string
	IsLoading      bool
	IsSaving       bool
	IsCreating     bool
	IsBatching     bool
	Err            error
}

// Clone deep-copies the state.
func (s State[T]) Clone(c Comparators[T]) State[T] {
	out := s
	out.PersistedItems = c.CloneItems(s.PersistedItems)
	out.DraftItems = c.CloneItems(s.DraftItems)
	out.Baseline = s.Baseline.Clone(c)
	return out
}

// ContainsID reports whether the id exists in either item sequence.
func (s State[T]) ContainsID(c Comparators[T], id string) bool {
	return c.IndexOf(s.PersistedItems, id) >= 0 || c.IndexOf(s.DraftItems, id) >= 0
}

// MatchesBaseline reports whether both item sequences equal the baseline's,
// comparing by id and value, order-insensitive. Unlike Diff emptiness this
// also notices items the baseline has never seen, which matters right after a
// save replaced drafts with their persisted forms.
func (s State[T]) MatchesBaseline(c Comparators[T]) bool {
	return sequencesMatch(c, s.PersistedItems, s.Baseline.PersistedItems) &&
		sequencesMatch(c, s.DraftItems, s.Baseline.DraftItems)
}

func sequencesMatch[T any](c Comparators[T], got, want []T) bool {
	if len(got) != len(want) {
		return false
	}
	byID := make(map[string]T, len(want))
	for _, item := range want {
		byID[c.GetID(item)] = item
	}
	for _, item := range got {
		other, ok := byID[c.GetID(item)]
		if !ok || !c.ItemsEqual(item, other) {
			return false
		}
	}
	return true
}

// HistorySnapshot is one entry of the undo/redo log. It is independent of the
// baseline used for save/discard; the two "go back" mechanisms deliberately
// coexist.
type HistorySnapshot[T any] struct {
	PersistedItems []T
	DraftItems     []T
	Timestamp      time.Time
}

// HistorySnapshotOf captures the item sequences of a state.
func HistorySnapshotOf[T any](s State[T], c Comparators[T], now time.Time) HistorySnapshot[T] {
	return HistorySnapshot[T]{
		PersistedItems: c.CloneItems(s.PersistedItems),
		DraftItems:     c.CloneItems(s.DraftItems),
		Timestamp:      now,
	}
}

// Snapshot is the immutable view delivered to subscribers and returned by the
// manager's state query. Item slices are cloned; consumers must treat every
// snapshot as read-only and route mutation through dispatch.
type Snapshot[T any] struct {
	ContextID      string
	PersistedItems []T
	DraftItems     []T
	Baseline       Baseline[T]
	SelectedItemID string
	IsLoading      bool
	IsSaving       bool
	IsCreating     bool
	IsBatching     bool
	Err            error

	// Derived reads precomputed at publish time.
	CanUndo           bool
	CanRedo           bool
	HasUnsavedChanges bool
	PendingCount      int
}
