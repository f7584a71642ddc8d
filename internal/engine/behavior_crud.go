package engine

import (
	"fmt"

	"editcore/pkg/collection"
)

// crudBehavior carries the item lifecycle primitives: load, add, update,
// delete. CREATE_ITEM is registered as an alias of ADD_ITEM for hosts still
// on the older action vocabulary.
func crudBehavior[T any]() collection.Behavior[T] {
	return collection.Behavior[T]{
		Name:     collection.BehaviorCRUD,
		Priority: priorityCRUD,
		Handlers: map[collection.ActionType]collection.Handler[T]{
			collection.ActionLoadSavedItems: {Apply: applyLoadSavedItems[T]},
			collection.ActionAddItem:        {Apply: applyAddItem[T], Recording: true},
			collection.ActionCreateItem:     {Apply: applyAddItem[T], Recording: true},
			collection.ActionUpdateItem:     {Apply: applyUpdateItem[T], Recording: true},
			collection.ActionDeleteItem:     {Apply: applyDeleteItem[T], Recording: true},
		},
	}
}

// applyLoadSavedItems replaces the persisted sequence with the fetched
// records. Draft items survive a reload; they were never on the server.
func applyLoadSavedItems[T any](caps collection.Capabilities[T], state *collection.State[T], action collection.Action) error {
	act, ok := action.(collection.LoadSavedItems[T])
	if !ok {
		return fmt.Errorf("engine: %s carries %T", action.Type(), action)
	}
	state.PersistedItems = caps.Comparators.CloneItems(act.Items)
	dropVanishedSelection(caps, state)
	return nil
}

func applyAddItem[T any](caps collection.Capabilities[T], state *collection.State[T], action collection.Action) error {
	var item T
	switch act := action.(type) {
	case collection.AddItem[T]:
		item = act.Item
	case collection.CreateItem[T]:
		item = act.Item
	default:
		return fmt.Errorf("engine: %s carries %T", action.Type(), action)
	}
	id := caps.Comparators.GetID(item)
	if id == "" {
		if caps.Strict {
			return fmt.Errorf("engine: added item has no id")
		}
		caps.Logger.Warn("added item has no id, ignoring")
		return nil
	}
	if state.ContainsID(caps.Comparators, id) {
		if caps.Strict {
			return fmt.Errorf("engine: item %s already present", id)
		}
		caps.Logger.Warn("duplicate item id, ignoring add", "id", id)
		return nil
	}
	// An id the baseline already knows re-enters the persisted sequence: the
	// server has seen it, so a local delete followed by a re-add under the
	// same id diffs as an update, not a delete+create.
	if caps.Comparators.IndexOf(state.Baseline.PersistedItems, id) >= 0 {
		state.PersistedItems = append(state.PersistedItems, caps.Comparators.CloneItem(item))
		return nil
	}
	state.DraftItems = append(state.DraftItems, caps.Comparators.CloneItem(item))
	return nil
}

func applyUpdateItem[T any](caps collection.Capabilities[T], state *collection.State[T], action collection.Action) error {
	act, ok := action.(collection.UpdateItem[T])
	if !ok {
		return fmt.Errorf("engine: %s carries %T", action.Type(), action)
	}
	return mutateByID(caps, state, act.ID, act.Mutate)
}

// applyDeleteItem removes the item from whichever sequence holds it and, as
// the owner of the cross-behavior invariant, clears the selection when it
// removed the focused item.
func applyDeleteItem[T any](caps collection.Capabilities[T], state *collection.State[T], action collection.Action) error {
	act, ok := action.(collection.DeleteItem)
	if !ok {
		return fmt.Errorf("engine: %s carries %T", action.Type(), action)
	}
	var removed bool
	if state.PersistedItems, removed = removeByID(caps.Comparators, state.PersistedItems, act.ID); !removed {
		state.DraftItems, removed = removeByID(caps.Comparators, state.DraftItems, act.ID)
	}
	if !removed {
		if caps.Strict {
			return collection.ErrNotFound{Entity: "item", ID: act.ID}
		}
		caps.Logger.Debug("delete target not found", "id", act.ID)
		return nil
	}
	if state.SelectedItemID == act.ID {
		state.SelectedItemID = ""
	}
	return nil
}
