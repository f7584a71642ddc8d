package collection

// ActionType keys the engine's dispatch table.
type ActionType string

// Action surface handled by the built-in behaviors. Hosts may add their own
// types through custom behaviors; any dispatched action only needs a Type.
const (
	ActionLoadSavedItems  ActionType = "LOAD_SAVED_ITEMS"
	ActionAddItem         ActionType = "ADD_ITEM"
	ActionCreateItem      ActionType = "CREATE_ITEM"
	ActionUpdateItem      ActionType = "UPDATE_ITEM"
	ActionUpdateItemBatch ActionType = "UPDATE_ITEM_BATCH"
	ActionDeleteItem      ActionType = "DELETE_ITEM"
	ActionDeleteItems     ActionType = "DELETE_ITEMS"
	ActionClearAll        ActionType = "CLEAR_ALL"
	ActionClearDrafts     ActionType = "CLEAR_DRAFTS"
	ActionClearPersisted  ActionType = "CLEAR_PERSISTED"
	ActionCaptureBaseline ActionType = "CAPTURE_BASELINE"
	ActionCommitChanges   ActionType = "COMMIT_CHANGES"
	ActionDiscardChanges  ActionType = "DISCARD_CHANGES"
	ActionResetToBaseline ActionType = "RESET_TO_BASELINE"
	ActionSelectItem      ActionType = "SELECT_ITEM"
	ActionClearSelection  ActionType = "CLEAR_SELECTION"
	ActionBeginBatch      ActionType = "START_BATCH_OPERATION"
	ActionEndBatch        ActionType = "FINISH_BATCH_OPERATION"
	ActionUndo            ActionType = "UNDO"
	ActionRedo            ActionType = "REDO"
	ActionAddToHistory    ActionType = "ADD_TO_HISTORY"
)

// Action is a dispatched message. Concrete action values carry their typed
// payload; handlers assert to the expected concrete type.
type Action interface {
	Type() ActionType
}

// LoadSavedItems replaces the persisted sequence with server records. The
// engine dispatches it from Load after a successful fetch.
type LoadSavedItems[T any] struct {
	Items []T
}

func (LoadSavedItems[T]) Type() ActionType { return ActionLoadSavedItems }

// AddItem appends a client-side draft item.
type AddItem[T any] struct {
	Item T
}

func (AddItem[T]) Type() ActionType { return ActionAddItem }

// CreateItem is the legacy alias of AddItem kept for hosts migrating from the
// older action vocabulary.
type CreateItem[T any] struct {
	Item T
}

func (CreateItem[T]) Type() ActionType { return ActionCreateItem }

// UpdateItem applies a mutator to the item with the given id, wherever it
// lives. A missing id is a silent no-op outside strict mode.
type UpdateItem[T any] struct {
	ID     string
	Mutate func(*T)
}

func (UpdateItem[T]) Type() ActionType { return ActionUpdateItem }

// UpdateItemBatch is UpdateItem without an individual history entry; used
// inside START_BATCH_OPERATION/FINISH_BATCH_OPERATION spans.
type UpdateItemBatch[T any] struct {
	ID     string
	Mutate func(*T)
}

func (UpdateItemBatch[T]) Type() ActionType { return ActionUpdateItemBatch }

// DeleteItem removes the item with the given id from either sequence.
type DeleteItem struct {
	ID string
}

func (DeleteItem) Type() ActionType { return ActionDeleteItem }

// DeleteItems removes every listed id in one history step.
type DeleteItems struct {
	IDs []string
}

func (DeleteItems) Type() ActionType { return ActionDeleteItems }

// ClearAll empties both item sequences.
type ClearAll struct{}

func (ClearAll) Type() ActionType { return ActionClearAll }

// ClearDrafts empties the draft sequence only.
type ClearDrafts struct{}

func (ClearDrafts) Type() ActionType { return ActionClearDrafts }

// ClearPersisted empties the persisted sequence only.
type ClearPersisted struct{}

func (ClearPersisted) Type() ActionType { return ActionClearPersisted }

// CaptureBaseline records the current item sequences as the new server
// agreement point.
type CaptureBaseline struct{}

func (CaptureBaseline) Type() ActionType { return ActionCaptureBaseline }

// CommitChanges merges drafts into the persisted sequence and recaptures the
// baseline. Save dispatches it after the adapter accepted every change.
type CommitChanges struct{}

func (CommitChanges) Type() ActionType { return ActionCommitChanges }

// DiscardChanges rolls both item sequences back to the baseline values.
type DiscardChanges struct{}

func (DiscardChanges) Type() ActionType { return ActionDiscardChanges }

// ResetToBaseline is DiscardChanges under its explicit name; both abandon
// in-memory edits without touching the undo/redo history mechanism.
type ResetToBaseline struct{}

func (ResetToBaseline) Type() ActionType { return ActionResetToBaseline }

// SelectItem focuses the item with the given id.
type SelectItem struct {
	ID string
}

func (SelectItem) Type() ActionType { return ActionSelectItem }

// ClearSelection drops the focused item id.
type ClearSelection struct{}

func (ClearSelection) Type() ActionType { return ActionClearSelection }

// BeginBatch opens a span whose mutations coalesce into one history entry.
type BeginBatch struct{}

func (BeginBatch) Type() ActionType { return ActionBeginBatch }

// EndBatch closes the span and records the single history entry.
type EndBatch struct{}

func (EndBatch) Type() ActionType { return ActionEndBatch }

// Undo steps the history pointer back one snapshot.
type Undo struct{}

func (Undo) Type() ActionType { return ActionUndo }

// Redo steps the history pointer forward one snapshot.
type Redo struct{}

func (Redo) Type() ActionType { return ActionRedo }

// AddToHistory records the current item sequences into the undo log. The
// engine cascades it automatically after recording actions; hosts rarely
// dispatch it directly.
type AddToHistory struct{}

func (AddToHistory) Type() ActionType { return ActionAddToHistory }
