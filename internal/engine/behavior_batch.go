package engine

import (
	"fmt"

	"editcore/pkg/collection"
)

// batchBehavior marks a caller-delimited span whose mutations coalesce into
// one history entry. It is a save-point marker, not a transaction: there is
// no mid-batch rollback, only undo after the fact.
func batchBehavior[T any]() collection.Behavior[T] {
	return collection.Behavior[T]{
		Name:         collection.BehaviorBatch,
		Priority:     priorityBatch,
		Dependencies: []string{collection.BehaviorHistory},
		Handlers: map[collection.ActionType]collection.Handler[T]{
			collection.ActionBeginBatch: {Apply: applyBeginBatch[T]},
			// Recording on END fires after the flag clears, producing the
			// single snapshot for the whole span.
			collection.ActionEndBatch:        {Apply: applyEndBatch[T], Recording: true},
			collection.ActionUpdateItemBatch: {Apply: applyUpdateItemBatch[T], Recording: true},
		},
	}
}

func applyBeginBatch[T any](caps collection.Capabilities[T], state *collection.State[T], _ collection.Action) error {
	if state.IsBatching {
		if caps.Strict {
			return fmt.Errorf("engine: batch already open")
		}
		caps.Logger.Warn("batch already open, ignoring")
		return nil
	}
	state.IsBatching = true
	return nil
}

func applyEndBatch[T any](caps collection.Capabilities[T], state *collection.State[T], _ collection.Action) error {
	if !state.IsBatching {
		if caps.Strict {
			return fmt.Errorf("engine: no batch open")
		}
		caps.Logger.Warn("no batch open, ignoring")
		return nil
	}
	state.IsBatching = false
	return nil
}

// applyUpdateItemBatch mutates like UPDATE_ITEM; while the batch flag is set
// the engine suppresses the per-action history snapshot, so only the span's
// closing entry lands in the log.
func applyUpdateItemBatch[T any](caps collection.Capabilities[T], state *collection.State[T], action collection.Action) error {
	act, ok := action.(collection.UpdateItemBatch[T])
	if !ok {
		return fmt.Errorf("engine: %s carries %T", action.Type(), action)
	}
	return mutateByID(caps, state, act.ID, act.Mutate)
}
