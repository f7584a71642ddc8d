package collection

import "time"

// Names of the built-in behaviors.
const (
	BehaviorHistory        = "history"
	BehaviorCRUD           = "crud"
	BehaviorChangeTracking = "changetracking"
	BehaviorBatch          = "batch"
	BehaviorSelection      = "selection"
	BehaviorBulk           = "bulk"
)

// History is the bounded undo/redo log handed to behavior handlers. Entries
// form an ordered log with a current-position pointer; recording past the
// configured limit drops the oldest entry.
type History[T any] interface {
	// Record truncates any redo tail, appends the snapshot and advances the
	// pointer.
	Record(HistorySnapshot[T])
	// Undo steps the pointer back and returns the snapshot to restore.
	// Reports false at the start of history.
	Undo() (HistorySnapshot[T], bool)
	// Redo steps the pointer forward, symmetric to Undo.
	Redo() (HistorySnapshot[T], bool)
	CanUndo() bool
	CanRedo() bool
	// Reset discards the log and seeds it with the given snapshot.
	Reset(HistorySnapshot[T])
	Len() int
}

// Capabilities is the dependency set injected into every handler invocation.
// Behaviors receive their collaborators explicitly instead of reaching into
// shared ambient state.
type Capabilities[T any] struct {
	Comparators Comparators[T]
	History     History[T]
	Logger      Logger
	Now         func() time.Time
	// Strict mirrors Options.StrictMode: invariant violations return errors
	// instead of degrading to no-ops.
	Strict bool
}

// Handler binds an action to its effect on the working state.
type Handler[T any] struct {
	// Apply mutates the transactional state copy. Returning an error aborts
	// the dispatch and leaves the published state untouched.
	Apply func(caps Capabilities[T], state *State[T], action Action) error
	// Recording marks actions that produce an undo step. After a recording
	// action succeeds outside a batch span, the engine cascades
	// ADD_TO_HISTORY.
	Recording bool
}

// Behavior is a named, composable unit of action handlers. The engine merges
// the configured behaviors into one dispatch table, iterating in ascending
// priority; two behaviors claiming the same action key is a configuration
// error, never a silent overwrite.
type Behavior[T any] struct {
	Name         string
	Priority     int
	Dependencies []string
	Handlers     map[ActionType]Handler[T]
}
