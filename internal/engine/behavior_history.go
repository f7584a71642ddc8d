package engine

import "editcore/pkg/collection"

// historyBehavior wires UNDO/REDO and history recording over the bounded
// snapshot log. It records nothing on its own; the engine cascades
// ADD_TO_HISTORY after every recording action that completes outside a batch
// span.
func historyBehavior[T any]() collection.Behavior[T] {
	return collection.Behavior[T]{
		Name:     collection.BehaviorHistory,
		Priority: priorityHistory,
		Handlers: map[collection.ActionType]collection.Handler[T]{
			collection.ActionAddToHistory: {Apply: applyAddToHistory[T]},
			collection.ActionUndo:         {Apply: applyUndo[T]},
			collection.ActionRedo:         {Apply: applyRedo[T]},
		},
	}
}

func applyAddToHistory[T any](caps collection.Capabilities[T], state *collection.State[T], _ collection.Action) error {
	caps.History.Record(collection.HistorySnapshotOf(*state, caps.Comparators, caps.Now()))
	return nil
}

// applyUndo restores the previous snapshot. A dispatch at the start of
// history is a silent no-op.
func applyUndo[T any](caps collection.Capabilities[T], state *collection.State[T], _ collection.Action) error {
	snap, ok := caps.History.Undo()
	if !ok {
		return nil
	}
	restoreSnapshot(caps, state, snap)
	return nil
}

// applyRedo restores the next snapshot, symmetric to undo.
func applyRedo[T any](caps collection.Capabilities[T], state *collection.State[T], _ collection.Action) error {
	snap, ok := caps.History.Redo()
	if !ok {
		return nil
	}
	restoreSnapshot(caps, state, snap)
	return nil
}

func restoreSnapshot[T any](caps collection.Capabilities[T], state *collection.State[T], snap collection.HistorySnapshot[T]) {
	state.PersistedItems = caps.Comparators.CloneItems(snap.PersistedItems)
	state.DraftItems = caps.Comparators.CloneItems(snap.DraftItems)
	dropVanishedSelection(caps, state)
}
