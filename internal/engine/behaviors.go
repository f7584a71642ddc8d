package engine

import (
	"fmt"

	"editcore/pkg/collection"
)

// Built-in behavior priorities. History runs first so its snapshots observe
// the state ahead of any mutation behavior registered for the same dispatch.
const (
	priorityHistory        = 1
	priorityCRUD           = 10
	priorityChangeTracking = 20
	priorityBatch          = 30
	prioritySelection      = 40
	priorityBulk           = 50
)

// removeByID drops the item with the given id from the sequence, reporting
// whether anything was removed.
func removeByID[T any](c collection.Comparators[T], items []T, id string) ([]T, bool) {
	i := c.IndexOf(items, id)
	if i < 0 {
		return items, false
	}
	return append(items[:i], items[i+1:]...), true
}

// dropVanishedSelection clears the focused id when the referenced item no
// longer exists in either sequence.
func dropVanishedSelection[T any](caps collection.Capabilities[T], state *collection.State[T]) {
	if state.SelectedItemID == "" {
		return
	}
	if !state.ContainsID(caps.Comparators, state.SelectedItemID) {
		state.SelectedItemID = ""
	}
}

// mutateByID applies a mutator to the item with the given id in whichever
// sequence holds it. The mutator runs against a copy; an identity change is
// rejected because item ids are immutable through updates.
func mutateByID[T any](caps collection.Capabilities[T], state *collection.State[T], id string, mutate func(*T)) error {
	if mutate == nil {
		return nil
	}
	for _, items := range [][]T{state.PersistedItems, state.DraftItems} {
		i := caps.Comparators.IndexOf(items, id)
		if i < 0 {
			continue
		}
		item := caps.Comparators.CloneItem(items[i])
		mutate(&item)
		if got := caps.Comparators.GetID(item); got != id {
			if caps.Strict {
				return fmt.Errorf("engine: update changed item id from %s to %s", id, got)
			}
			caps.Logger.Warn("update changed item id, ignoring", "id", id, "new_id", got)
			return nil
		}
		items[i] = item
		return nil
	}
	if caps.Strict {
		return collection.ErrNotFound{Entity: "item", ID: id}
	}
	caps.Logger.Debug("update target not found", "id", id)
	return nil
}
