package engine

import (
	"errors"
	"testing"

	"editcore/pkg/collection"
)

func testConfig() collection.Config[card] {
	return collection.Config[card]{
		EntityName:  "card",
		ContextID:   "board-1",
		Comparators: cardComparators(),
	}
}

func mustManager(t *testing.T, cfg collection.Config[card], opts ...Option[card]) *Manager[card] {
	t.Helper()
	m, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func mustDispatch(t *testing.T, m *Manager[card], action collection.Action) {
	t.Helper()
	if err := m.Dispatch(action); err != nil {
		t.Fatalf("dispatch %s: %v", action.Type(), err)
	}
}

// seedPersisted loads items as the server truth and captures the baseline.
func seedPersisted(t *testing.T, m *Manager[card], items ...card) {
	t.Helper()
	mustDispatch(t, m, collection.LoadSavedItems[card]{Items: items})
	mustDispatch(t, m, collection.CaptureBaseline{})
}

func ids(items []card) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.ID)
	}
	return out
}

func requireIDs(t *testing.T, got []card, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %v want %v", ids(got), want)
	}
	for i, id := range want {
		if got[i].ID != id {
			t.Fatalf("position %d: got %v want %v", i, ids(got), want)
		}
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.EntityName = ""
	if _, err := New(cfg); err == nil {
		t.Fatalf("invalid config accepted")
	}

	cfg = testConfig()
	cfg.Behaviors = []string{"nonsense"}
	if _, err := New(cfg); err == nil {
		t.Fatalf("unknown behavior accepted")
	}
}

func TestAddItemBecomesDraftCreate(t *testing.T) {
	m := mustManager(t, testConfig())
	if err := m.Add(card{ID: "a", Label: "one"}); err != nil {
		t.Fatalf("add: %v", err)
	}

	snap := m.Snapshot()
	requireIDs(t, snap.DraftItems, "a")
	if len(snap.PersistedItems) != 0 {
		t.Fatalf("add must not touch persisted items")
	}
	if !snap.HasUnsavedChanges || snap.PendingCount != 1 {
		t.Fatalf("pending state wrong: %+v", snap)
	}
	changes := m.PendingChanges()
	if len(changes.Creates) != 1 || changes.Creates[0].ID != "a" {
		t.Fatalf("expected pending create, got %+v", changes)
	}
}

func TestAddDuplicateIDIsNoOpByDefault(t *testing.T) {
	m := mustManager(t, testConfig())
	mustDispatch(t, m, collection.AddItem[card]{Item: card{ID: "a"}})
	mustDispatch(t, m, collection.AddItem[card]{Item: card{ID: "a", Label: "again"}})

	snap := m.Snapshot()
	requireIDs(t, snap.DraftItems, "a")
	if snap.DraftItems[0].Label != "" {
		t.Fatalf("duplicate add mutated existing item: %+v", snap.DraftItems[0])
	}
}

func TestStrictModeTurnsNoOpsIntoErrors(t *testing.T) {
	cfg := testConfig()
	cfg.Options.StrictMode = true
	m := mustManager(t, cfg)
	mustDispatch(t, m, collection.AddItem[card]{Item: card{ID: "a"}})

	if err := m.Add(card{ID: "a"}); err == nil {
		t.Fatalf("strict duplicate add accepted")
	}
	if err := m.Update("missing", func(c *card) { c.Label = "x" }); err == nil {
		t.Fatalf("strict update of missing id accepted")
	}
	var notFound collection.ErrNotFound
	if err := m.Delete("missing"); !errors.As(err, &notFound) {
		t.Fatalf("strict delete of missing id: %v", err)
	}
	if err := m.Select("missing"); err == nil {
		t.Fatalf("strict select of missing id accepted")
	}
}

func TestFailedDispatchLeavesStateUntouched(t *testing.T) {
	cfg := testConfig()
	cfg.Options.StrictMode = true
	m := mustManager(t, cfg)
	mustDispatch(t, m, collection.AddItem[card]{Item: card{ID: "a", Label: "one"}})

	// The mutator changes the id, which strict mode rejects after it ran.
	err := m.Update("a", func(c *card) {
		c.ID = "zzz"
		c.Label = "mutated"
	})
	if err == nil {
		t.Fatalf("id-changing update accepted")
	}
	snap := m.Snapshot()
	requireIDs(t, snap.DraftItems, "a")
	if snap.DraftItems[0].Label != "one" {
		t.Fatalf("failed dispatch leaked partial mutation: %+v", snap.DraftItems[0])
	}
}

func TestUpdateMutatesItemInPlace(t *testing.T) {
	m := mustManager(t, testConfig())
	seedPersisted(t, m, card{ID: "a", Label: "one"})

	if err := m.Update("a", func(c *card) { c.Label = "two" }); err != nil {
		t.Fatalf("update: %v", err)
	}
	snap := m.Snapshot()
	if snap.PersistedItems[0].Label != "two" {
		t.Fatalf("update not applied: %+v", snap.PersistedItems[0])
	}
	changes := m.PendingChanges()
	if len(changes.Updates) != 1 {
		t.Fatalf("expected pending update, got %+v", changes)
	}
}

func TestDeleteClearsSelectionOfDeletedItem(t *testing.T) {
	m := mustManager(t, testConfig())
	seedPersisted(t, m, card{ID: "a"}, card{ID: "b"})
	if err := m.Select("a"); err != nil {
		t.Fatalf("select: %v", err)
	}

	if err := m.Delete("a"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	snap := m.Snapshot()
	if snap.SelectedItemID != "" {
		t.Fatalf("selection survived deletion: %q", snap.SelectedItemID)
	}
	requireIDs(t, snap.PersistedItems, "b")
}

func TestDeleteKeepsSelectionOfOtherItem(t *testing.T) {
	m := mustManager(t, testConfig())
	seedPersisted(t, m, card{ID: "a"}, card{ID: "b"})
	mustDispatch(t, m, collection.SelectItem{ID: "b"})
	mustDispatch(t, m, collection.DeleteItem{ID: "a"})

	if got := m.Snapshot().SelectedItemID; got != "b" {
		t.Fatalf("unrelated deletion cleared selection: %q", got)
	}
}

func TestSelectUnknownIDIsNoOpByDefault(t *testing.T) {
	m := mustManager(t, testConfig())
	seedPersisted(t, m, card{ID: "a"})
	mustDispatch(t, m, collection.SelectItem{ID: "a"})
	mustDispatch(t, m, collection.SelectItem{ID: "missing"})

	if got := m.Snapshot().SelectedItemID; got != "a" {
		t.Fatalf("selection changed by unknown id: %q", got)
	}
	mustDispatch(t, m, collection.SelectItem{ID: ""})
	if got := m.Snapshot().SelectedItemID; got != "" {
		t.Fatalf("empty id must clear selection: %q", got)
	}
}

func TestDeleteThenReAddSameIDClassifiesAsUpdate(t *testing.T) {
	m := mustManager(t, testConfig())
	seedPersisted(t, m, card{ID: "a", Label: "one"})

	mustDispatch(t, m, collection.DeleteItem{ID: "a"})
	mustDispatch(t, m, collection.AddItem[card]{Item: card{ID: "a", Label: "reborn"}})

	changes := m.PendingChanges()
	if len(changes.Creates) != 0 || len(changes.Deletes) != 0 {
		t.Fatalf("expected update-only classification, got %+v", changes)
	}
	if len(changes.Updates) != 1 || changes.Updates[0].Label != "reborn" {
		t.Fatalf("expected update of reborn item, got %+v", changes)
	}
}

func TestUndoRedoAreInverse(t *testing.T) {
	m := mustManager(t, testConfig())
	mustDispatch(t, m, collection.AddItem[card]{Item: card{ID: "a"}})
	mustDispatch(t, m, collection.AddItem[card]{Item: card{ID: "b"}})

	if err := m.Undo(); err != nil {
		t.Fatalf("undo: %v", err)
	}
	requireIDs(t, m.Snapshot().DraftItems, "a")

	if err := m.Redo(); err != nil {
		t.Fatalf("redo: %v", err)
	}
	requireIDs(t, m.Snapshot().DraftItems, "a", "b")
}

func TestUndoAtHistoryStartIsSilentNoOp(t *testing.T) {
	m := mustManager(t, testConfig())
	if err := m.Undo(); err != nil {
		t.Fatalf("undo on pristine manager: %v", err)
	}
	if m.CanUndo() || m.CanRedo() {
		t.Fatalf("pristine manager reports history")
	}
}

func TestNewMutationDropsRedoTail(t *testing.T) {
	m := mustManager(t, testConfig())
	mustDispatch(t, m, collection.AddItem[card]{Item: card{ID: "a"}})
	mustDispatch(t, m, collection.AddItem[card]{Item: card{ID: "b"}})
	mustDispatch(t, m, collection.Undo{})
	mustDispatch(t, m, collection.AddItem[card]{Item: card{ID: "c"}})

	if m.CanRedo() {
		t.Fatalf("redo tail survived new mutation")
	}
	requireIDs(t, m.Snapshot().DraftItems, "a", "c")
}

func TestUndoDropsSelectionOfVanishedItem(t *testing.T) {
	m := mustManager(t, testConfig())
	mustDispatch(t, m, collection.AddItem[card]{Item: card{ID: "a"}})
	mustDispatch(t, m, collection.SelectItem{ID: "a"})

	mustDispatch(t, m, collection.Undo{})
	if got := m.Snapshot().SelectedItemID; got != "" {
		t.Fatalf("selection points at vanished item: %q", got)
	}
}

func TestBatchCoalescesIntoOneHistoryEntry(t *testing.T) {
	m := mustManager(t, testConfig())
	seedPersisted(t, m, card{ID: "a", Rank: 1}, card{ID: "b", Rank: 2})

	if err := m.BeginBatch(); err != nil {
		t.Fatalf("begin batch: %v", err)
	}
	if err := m.UpdateInBatch("a", func(c *card) { c.Rank = 10 }); err != nil {
		t.Fatalf("batch update: %v", err)
	}
	if err := m.UpdateInBatch("b", func(c *card) { c.Rank = 20 }); err != nil {
		t.Fatalf("batch update: %v", err)
	}
	if m.CanUndo() {
		t.Fatalf("history recorded inside open batch")
	}
	if err := m.EndBatch(); err != nil {
		t.Fatalf("end batch: %v", err)
	}

	// One undo reverts the whole span.
	mustDispatch(t, m, collection.Undo{})
	snap := m.Snapshot()
	if snap.PersistedItems[0].Rank != 1 || snap.PersistedItems[1].Rank != 2 {
		t.Fatalf("batch undo incomplete: %+v", snap.PersistedItems)
	}
	if m.CanUndo() {
		t.Fatalf("batch produced more than one history entry")
	}
}

func TestBeginBatchTwiceIsNoOpByDefault(t *testing.T) {
	m := mustManager(t, testConfig())
	mustDispatch(t, m, collection.BeginBatch{})
	mustDispatch(t, m, collection.BeginBatch{})
	if !m.Snapshot().IsBatching {
		t.Fatalf("batch flag lost")
	}
	mustDispatch(t, m, collection.EndBatch{})
	if m.Snapshot().IsBatching {
		t.Fatalf("batch flag survived end")
	}
}

func TestDiscardChangesRestoresBaseline(t *testing.T) {
	m := mustManager(t, testConfig())
	seedPersisted(t, m, card{ID: "a", Label: "one"})

	mustDispatch(t, m, collection.UpdateItem[card]{ID: "a", Mutate: func(c *card) { c.Label = "dirty" }})
	mustDispatch(t, m, collection.AddItem[card]{Item: card{ID: "draft"}})
	if !m.HasUnsavedChanges() {
		t.Fatalf("expected unsaved changes")
	}

	if err := m.DiscardChanges(); err != nil {
		t.Fatalf("discard: %v", err)
	}
	snap := m.Snapshot()
	requireIDs(t, snap.PersistedItems, "a")
	if snap.PersistedItems[0].Label != "one" || len(snap.DraftItems) != 0 {
		t.Fatalf("discard incomplete: %+v", snap)
	}
	if m.HasUnsavedChanges() {
		t.Fatalf("discarded state still dirty")
	}
	// Discard is itself undoable: history and baseline are separate.
	mustDispatch(t, m, collection.Undo{})
	if got := m.Snapshot().PersistedItems[0].Label; got != "dirty" {
		t.Fatalf("undo after discard: %q", got)
	}
}

func TestCommitChangesIsIdempotent(t *testing.T) {
	m := mustManager(t, testConfig())
	seedPersisted(t, m, card{ID: "a"})
	before := m.Snapshot().Baseline.Version

	mustDispatch(t, m, collection.AddItem[card]{Item: card{ID: "b"}})
	mustDispatch(t, m, collection.CommitChanges{})

	snap := m.Snapshot()
	if snap.Baseline.Version != before+1 {
		t.Fatalf("commit did not advance baseline: %d -> %d", before, snap.Baseline.Version)
	}
	requireIDs(t, snap.PersistedItems, "a", "b")
	if len(snap.DraftItems) != 0 {
		t.Fatalf("commit left drafts behind")
	}

	mustDispatch(t, m, collection.CommitChanges{})
	if got := m.Snapshot().Baseline.Version; got != before+1 {
		t.Fatalf("repeated commit advanced baseline again: %d", got)
	}
}

func TestBulkOperations(t *testing.T) {
	m := mustManager(t, testConfig())
	seedPersisted(t, m, card{ID: "a"}, card{ID: "b"})
	mustDispatch(t, m, collection.AddItem[card]{Item: card{ID: "c"}})
	mustDispatch(t, m, collection.SelectItem{ID: "a"})

	mustDispatch(t, m, collection.DeleteItems{IDs: []string{"a", "c", "missing"}})
	snap := m.Snapshot()
	requireIDs(t, snap.PersistedItems, "b")
	if len(snap.DraftItems) != 0 || snap.SelectedItemID != "" {
		t.Fatalf("bulk delete incomplete: %+v", snap)
	}

	mustDispatch(t, m, collection.ClearAll{})
	snap = m.Snapshot()
	if len(snap.PersistedItems) != 0 || len(snap.DraftItems) != 0 {
		t.Fatalf("clear all incomplete: %+v", snap)
	}
}

func TestClearDraftsAndPersistedAreIndependent(t *testing.T) {
	m := mustManager(t, testConfig())
	seedPersisted(t, m, card{ID: "a"})
	mustDispatch(t, m, collection.AddItem[card]{Item: card{ID: "b"}})

	mustDispatch(t, m, collection.ClearDrafts{})
	snap := m.Snapshot()
	requireIDs(t, snap.PersistedItems, "a")
	if len(snap.DraftItems) != 0 {
		t.Fatalf("drafts survived clear: %+v", snap.DraftItems)
	}

	mustDispatch(t, m, collection.ClearPersisted{})
	if got := m.Snapshot().PersistedItems; len(got) != 0 {
		t.Fatalf("persisted survived clear: %v", ids(got))
	}
}

func TestUnknownActionPolicy(t *testing.T) {
	m := mustManager(t, testConfig())
	if err := m.Dispatch(customAction{}); err != nil {
		t.Fatalf("default policy must ignore unknown actions: %v", err)
	}

	cfg := testConfig()
	cfg.Options.StrictMode = true
	strict := mustManager(t, cfg)
	var unknown collection.ErrUnknownAction
	if err := strict.Dispatch(customAction{}); !errors.As(err, &unknown) {
		t.Fatalf("strict policy: %v", err)
	}
}

type customAction struct{}

func (customAction) Type() collection.ActionType { return "CUSTOM_ACTION" }

func TestCustomBehaviorThroughRegistry(t *testing.T) {
	reg := DefaultRegistry[card]()
	err := reg.Register(collection.Behavior[card]{
		Name:     "labeler",
		Priority: 90,
		Handlers: map[collection.ActionType]collection.Handler[card]{
			"CUSTOM_ACTION": {
				Apply: func(caps collection.Capabilities[card], state *collection.State[card], _ collection.Action) error {
					for i := range state.PersistedItems {
						state.PersistedItems[i].Label = "tagged"
					}
					return nil
				},
				Recording: true,
			},
		},
	})
	if err != nil {
		t.Fatalf("register custom behavior: %v", err)
	}

	cfg := testConfig()
	cfg.Behaviors = append([]string{
		collection.BehaviorHistory,
		collection.BehaviorCRUD,
		collection.BehaviorChangeTracking,
		collection.BehaviorBatch,
		collection.BehaviorSelection,
		collection.BehaviorBulk,
	}, "labeler")
	m := mustManager(t, cfg, WithRegistry[card](reg))
	seedPersisted(t, m, card{ID: "a"})

	mustDispatch(t, m, customAction{})
	if got := m.Snapshot().PersistedItems[0].Label; got != "tagged" {
		t.Fatalf("custom behavior not applied: %q", got)
	}
	// Custom recording actions participate in undo like built-ins.
	mustDispatch(t, m, collection.Undo{})
	if got := m.Snapshot().PersistedItems[0].Label; got != "" {
		t.Fatalf("custom action not undone: %q", got)
	}
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	m := mustManager(t, testConfig())
	var received []collection.Snapshot[card]
	cancel := m.Subscribe(func(snap collection.Snapshot[card]) {
		received = append(received, snap)
	})

	mustDispatch(t, m, collection.AddItem[card]{Item: card{ID: "a"}})
	if len(received) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(received))
	}
	requireIDs(t, received[0].DraftItems, "a")

	cancel()
	mustDispatch(t, m, collection.AddItem[card]{Item: card{ID: "b"}})
	if len(received) != 1 {
		t.Fatalf("cancelled subscriber still notified")
	}
}

func TestSnapshotIsIsolatedFromState(t *testing.T) {
	m := mustManager(t, testConfig())
	seedPersisted(t, m, card{ID: "a", Label: "one"})

	snap := m.Snapshot()
	snap.PersistedItems[0].Label = "mutated"
	if got := m.Snapshot().PersistedItems[0].Label; got != "one" {
		t.Fatalf("snapshot shared state: %q", got)
	}
}

func TestHistoryLimitBoundsUndoDepth(t *testing.T) {
	cfg := testConfig()
	cfg.Options.HistoryLimit = 3
	m := mustManager(t, cfg)

	for _, id := range []string{"a", "b", "c", "d", "e"} {
		mustDispatch(t, m, collection.AddItem[card]{Item: card{ID: id}})
	}
	steps := 0
	for m.CanUndo() {
		mustDispatch(t, m, collection.Undo{})
		steps++
		if steps > 10 {
			t.Fatalf("undo never bottomed out")
		}
	}
	if steps != 2 {
		t.Fatalf("expected 2 undo steps under limit 3, got %d", steps)
	}
}

func TestCommitMergesBaselineResidentDrafts(t *testing.T) {
	m := mustManager(t, testConfig())
	mustDispatch(t, m, collection.AddItem[card]{Item: card{ID: "d"}})
	mustDispatch(t, m, collection.CaptureBaseline{})

	// Capturing a baseline over a draft does not settle it: the item has
	// never been persisted, so it is still a pending create.
	snap := m.Snapshot()
	if snap.PendingCount != 1 || !snap.HasUnsavedChanges {
		t.Fatalf("baseline-resident draft not pending: count=%d unsaved=%v", snap.PendingCount, snap.HasUnsavedChanges)
	}

	mustDispatch(t, m, collection.CommitChanges{})
	snap = m.Snapshot()
	requireIDs(t, snap.PersistedItems, "d")
	if len(snap.DraftItems) != 0 {
		t.Fatalf("commit left drafts behind: %+v", snap.DraftItems)
	}
	if snap.HasUnsavedChanges || snap.PendingCount != 0 {
		t.Fatalf("committed state still pending: %+v", snap)
	}
	if snap.Baseline.Version != 2 {
		t.Fatalf("commit must recapture baseline, version=%d", snap.Baseline.Version)
	}
}
