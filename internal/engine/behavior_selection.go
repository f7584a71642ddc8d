package engine

import "editcore/pkg/collection"

// selectionBehavior tracks at most one focused item id. Clearing on delete is
// not handled here: the delete handlers own that invariant so focus never
// needs to poll the collections.
func selectionBehavior[T any]() collection.Behavior[T] {
	return collection.Behavior[T]{
		Name:     collection.BehaviorSelection,
		Priority: prioritySelection,
		Handlers: map[collection.ActionType]collection.Handler[T]{
			collection.ActionSelectItem:     {Apply: applySelectItem[T]},
			collection.ActionClearSelection: {Apply: applyClearSelection[T]},
		},
	}
}

func applySelectItem[T any](caps collection.Capabilities[T], state *collection.State[T], action collection.Action) error {
	act, ok := action.(collection.SelectItem)
	if !ok {
		return nil
	}
	if act.ID == "" {
		state.SelectedItemID = ""
		return nil
	}
	if !state.ContainsID(caps.Comparators, act.ID) {
		if caps.Strict {
			return collection.ErrNotFound{Entity: "item", ID: act.ID}
		}
		caps.Logger.Debug("selection target not found", "id", act.ID)
		return nil
	}
	state.SelectedItemID = act.ID
	return nil
}

func applyClearSelection[T any](_ collection.Capabilities[T], state *collection.State[T], _ collection.Action) error {
	state.SelectedItemID = ""
	return nil
}
