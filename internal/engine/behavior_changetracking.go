package engine

import "editcore/pkg/collection"

// changeTrackingBehavior owns the baseline: the only actions permitted to
// replace it wholesale. The diff itself is pure (collection.Diff) and never
// mutates state or baseline.
func changeTrackingBehavior[T any]() collection.Behavior[T] {
	return collection.Behavior[T]{
		Name:     collection.BehaviorChangeTracking,
		Priority: priorityChangeTracking,
		Handlers: map[collection.ActionType]collection.Handler[T]{
			collection.ActionCaptureBaseline: {Apply: applyCaptureBaseline[T]},
			collection.ActionCommitChanges:   {Apply: applyCommitChanges[T]},
			collection.ActionDiscardChanges:  {Apply: applyDiscardChanges[T], Recording: true},
			collection.ActionResetToBaseline: {Apply: applyDiscardChanges[T], Recording: true},
		},
	}
}

// applyCaptureBaseline marks a new server agreement point. The undo history
// reseeds here: steps behind an accepted baseline are no longer restorable.
func applyCaptureBaseline[T any](caps collection.Capabilities[T], state *collection.State[T], _ collection.Action) error {
	state.Baseline = collection.Baseline[T]{
		PersistedItems: caps.Comparators.CloneItems(state.PersistedItems),
		DraftItems:     caps.Comparators.CloneItems(state.DraftItems),
		Timestamp:      caps.Now(),
		Version:        state.Baseline.Version + 1,
	}
	caps.History.Reset(collection.HistorySnapshotOf(*state, caps.Comparators, caps.Now()))
	return nil
}

// applyCommitChanges merges drafts into the persisted sequence and recaptures
// the baseline. Committing an unchanged collection is a no-op, so repeated
// commits advance the baseline version exactly once.
func applyCommitChanges[T any](caps collection.Capabilities[T], state *collection.State[T], action collection.Action) error {
	// Both checks are needed: drafts the baseline already holds diff as
	// creates while matching the baseline, and a freshly saved state matches
	// nothing in the diff while diverging from the baseline.
	if collection.Diff(*state, caps.Comparators).Empty() && state.MatchesBaseline(caps.Comparators) {
		return nil
	}
	state.PersistedItems = append(state.PersistedItems, state.DraftItems...)
	state.DraftItems = nil
	return applyCaptureBaseline(caps, state, action)
}

// applyDiscardChanges abandons in-memory edits, rolling both sequences back
// to the baseline values. This is the server-agreement checkpoint restore,
// deliberately distinct from undo/redo history.
func applyDiscardChanges[T any](caps collection.Capabilities[T], state *collection.State[T], _ collection.Action) error {
	state.PersistedItems = caps.Comparators.CloneItems(state.Baseline.PersistedItems)
	state.DraftItems = caps.Comparators.CloneItems(state.Baseline.DraftItems)
	dropVanishedSelection(caps, state)
	return nil
}
