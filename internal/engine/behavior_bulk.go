package engine

import (
	"fmt"

	"editcore/pkg/collection"
)

// bulkBehavior operates on both sequences uniformly. Each operation records
// one history entry unless dispatched inside a batch span.
func bulkBehavior[T any]() collection.Behavior[T] {
	return collection.Behavior[T]{
		Name:         collection.BehaviorBulk,
		Priority:     priorityBulk,
		Dependencies: []string{collection.BehaviorCRUD},
		Handlers: map[collection.ActionType]collection.Handler[T]{
			collection.ActionClearAll:       {Apply: applyClearAll[T], Recording: true},
			collection.ActionClearDrafts:    {Apply: applyClearDrafts[T], Recording: true},
			collection.ActionClearPersisted: {Apply: applyClearPersisted[T], Recording: true},
			collection.ActionDeleteItems:    {Apply: applyDeleteItems[T], Recording: true},
		},
	}
}

func applyClearAll[T any](caps collection.Capabilities[T], state *collection.State[T], _ collection.Action) error {
	state.PersistedItems = nil
	state.DraftItems = nil
	state.SelectedItemID = ""
	return nil
}

func applyClearDrafts[T any](caps collection.Capabilities[T], state *collection.State[T], _ collection.Action) error {
	state.DraftItems = nil
	dropVanishedSelection(caps, state)
	return nil
}

func applyClearPersisted[T any](caps collection.Capabilities[T], state *collection.State[T], _ collection.Action) error {
	state.PersistedItems = nil
	dropVanishedSelection(caps, state)
	return nil
}

func applyDeleteItems[T any](caps collection.Capabilities[T], state *collection.State[T], action collection.Action) error {
	act, ok := action.(collection.DeleteItems)
	if !ok {
		return fmt.Errorf("engine: %s carries %T", action.Type(), action)
	}
	for _, id := range act.IDs {
		var removed bool
		if state.PersistedItems, removed = removeByID(caps.Comparators, state.PersistedItems, id); !removed {
			state.DraftItems, _ = removeByID(caps.Comparators, state.DraftItems, id)
		}
		if state.SelectedItemID == id {
			state.SelectedItemID = ""
		}
	}
	return nil
}
