package collection

// ChangeAction indicates the kind of pending mutation derived for an item.
type ChangeAction string

const (
	// ChangeCreate marks an item that exists only client-side.
	ChangeCreate ChangeAction = "create"
	// ChangeUpdate marks a persisted item whose value diverged from baseline.
	ChangeUpdate ChangeAction = "update"
	ChangeDelete ChangeAction = "delete"
)

// Change pairs an item with the pending action derived for it.
type Change[T any] struct {
	Action ChangeAction
	Item   T
}

// PendingChanges is the three-way diff between current state and baseline.
type PendingChanges[T any] struct {
	Creates []T
	Updates []T
	Deletes []T
}

// Count returns the total number of pending changes.
func (p PendingChanges[T]) Count() int {
	return len(p.Creates) + len(p.Updates) + len(p.Deletes)
}

// Empty reports whether state and baseline agree.
func (p PendingChanges[T]) Empty() bool {
	return p.Count() == 0
}

// Flatten lists all pending changes as tagged entries, creates first, then
// updates, then deletes, preserving item order within each class.
func (p PendingChanges[T]) Flatten() []Change[T] {
	out := make([]Change[T], 0, p.Count())
	for _, item := range p.Creates {
		out = append(out, Change[T]{Action: ChangeCreate, Item: item})
	}
	for _, item := range p.Updates {
		out = append(out, Change[T]{Action: ChangeUpdate, Item: item})
	}
	for _, item := range p.Deletes {
		out = append(out, Change[T]{Action: ChangeDelete, Item: item})
	}
	return out
}

// Diff derives the pending changes of a state against its baseline without
// mutating either.
//
// Creates are the draft items verbatim: anything never persisted is by
// definition a pending create. Updates are persisted items whose id exists in
// the baseline with a different value. Deletes are baseline items whose id is
// absent from the current persisted sequence.
//
// A persisted item deleted locally and re-added under the same id before save
// classifies as an update, not a delete+create: deletes are computed by
// id-absence and re-insertion makes the id present again. Callers relying on
// delete-then-recreate semantics must use distinct ids.
func Diff[T any](state State[T], c Comparators[T]) PendingChanges[T] {
	var out PendingChanges[T]

	if len(state.DraftItems) > 0 {
		out.Creates = c.CloneItems(state.DraftItems)
	}

	baseByID := make(map[string]T, len(state.Baseline.PersistedItems))
	for _, item := range state.Baseline.PersistedItems {
		baseByID[c.GetID(item)] = item
	}

	currentIDs := make(map[string]struct{}, len(state.PersistedItems))
	for _, item := range state.PersistedItems {
		id := c.GetID(item)
		currentIDs[id] = struct{}{}
		base, ok := baseByID[id]
		if !ok {
			continue
		}
		if !c.ItemsEqual(base, item) {
			out.Updates = append(out.Updates, c.CloneItem(item))
		}
	}

	for _, item := range state.Baseline.PersistedItems {
		if _, ok := currentIDs[c.GetID(item)]; !ok {
			out.Deletes = append(out.Deletes, c.CloneItem(item))
		}
	}

	return out
}
