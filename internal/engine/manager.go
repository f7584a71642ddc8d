package engine

import (
	"context"
	"sort"
	"sync"
	"time"

	"editcore/pkg/collection"
)

// Option configures a manager at construction time.
type Option[T any] func(*Manager[T])

// WithLogger injects a structured logger. NewSlogLogger adapts a *slog.Logger.
func WithLogger[T any](logger collection.Logger) Option[T] {
	return func(m *Manager[T]) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics injects a metrics recorder observing dispatch, load and save.
func WithMetrics[T any](rec MetricsRecorder) Option[T] {
	return func(m *Manager[T]) {
		if rec != nil {
			m.metrics = rec
		}
	}
}

// WithTracer injects a tracer spanning load and save.
func WithTracer[T any](tracer Tracer) Option[T] {
	return func(m *Manager[T]) {
		if tracer != nil {
			m.tracer = tracer
		}
	}
}

// WithAudit injects an audit sink receiving one entry per load and save.
func WithAudit[T any](rec AuditRecorder) Option[T] {
	return func(m *Manager[T]) {
		if rec != nil {
			m.audit = rec
		}
	}
}

// WithClock overrides the time source, for tests.
func WithClock[T any](now func() time.Time) Option[T] {
	return func(m *Manager[T]) {
		if now != nil {
			m.now = now
		}
	}
}

// WithRegistry swaps the behavior registry the config's behavior names are
// resolved against, letting hosts compose custom behaviors with built-ins.
func WithRegistry[T any](reg *Registry[T]) Option[T] {
	return func(m *Manager[T]) {
		if reg != nil {
			m.registry = reg
		}
	}
}

// Manager owns one collection's state and serializes every mutation through
// its dispatch table. Handlers run against a transactional clone of the state
// which is swapped in only on success, so a failed action never leaves a
// half-applied state behind.
type Manager[T any] struct {
	cfg      collection.Config[T]
	registry *Registry[T]
	table    map[collection.ActionType]tableEntry[T]

	logger  collection.Logger
	metrics MetricsRecorder
	tracer  Tracer
	audit   AuditRecorder
	now     func() time.Time

	mu          sync.Mutex
	state       collection.State[T]
	history     *historyLog[T]
	subscribers map[int]func(collection.Snapshot[T])
	nextSubID   int
}

// New builds a manager from a validated config. The behavior names in the
// config resolve against the default registry unless WithRegistry overrides
// it; an unknown name, a missing dependency or two behaviors claiming the
// same action are construction errors, not dispatch-time surprises.
func New[T any](cfg collection.Config[T], opts ...Option[T]) (*Manager[T], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.Normalized()

	m := &Manager[T]{
		cfg:         cfg,
		logger:      noopLogger{},
		metrics:     noopMetrics{},
		tracer:      noopTracer{},
		audit:       noopAudit{},
		now:         func() time.Time { return time.Now().UTC() },
		subscribers: make(map[int]func(collection.Snapshot[T])),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = DefaultRegistry[T]()
	}

	behaviors, err := m.registry.Resolve(cfg.Behaviors)
	if err != nil {
		return nil, err
	}
	table, err := buildDispatchTable(behaviors)
	if err != nil {
		return nil, err
	}
	m.table = table

	m.state = collection.State[T]{
		ContextID: cfg.ContextID,
		Baseline:  collection.Baseline[T]{Timestamp: m.now()},
	}
	m.history = newHistoryLog(cfg.Options.HistoryLimit, collection.HistorySnapshotOf(m.state, cfg.Comparators, m.now()))
	return m, nil
}

func (m *Manager[T]) caps() collection.Capabilities[T] {
	return collection.Capabilities[T]{
		Comparators: m.cfg.Comparators,
		History:     m.history,
		Logger:      m.logger,
		Now:         m.now,
		Strict:      m.cfg.Options.StrictMode,
	}
}

// Dispatch routes an action to the behavior claiming its type. On success
// every subscriber receives the new snapshot; on failure the state is
// untouched and the error is returned without being stored in the state.
func (m *Manager[T]) Dispatch(action collection.Action) error {
	start := m.now()

	m.mu.Lock()
	outcome, err := m.applyLocked(action)
	var (
		snap     collection.Snapshot[T]
		subs     []func(collection.Snapshot[T])
		autoSave bool
	)
	if err == nil && outcome.handled {
		snap = m.snapshotLocked()
		subs = m.subscriberList()
		autoSave = m.cfg.Options.AutoSave &&
			outcome.recording &&
			!m.state.IsBatching &&
			!m.state.IsSaving &&
			m.cfg.API != nil
	}
	m.mu.Unlock()

	m.metrics.Observe(context.Background(), "dispatch", err == nil, m.now().Sub(start))
	if err != nil {
		return err
	}
	notifySubscribers(subs, snap)
	if autoSave {
		if saveErr := m.Save(context.Background()); saveErr != nil {
			m.logger.Warn("auto-save failed", "entity", m.cfg.EntityName, "error", saveErr)
		}
	}
	return nil
}

type applyOutcome struct {
	handled   bool
	recording bool
}

// applyLocked runs the clone-apply-swap cycle for one action and, for
// recording handlers outside a batch span, cascades ADD_TO_HISTORY so the
// post-action snapshot lands in the undo log. Callers hold the mutex.
func (m *Manager[T]) applyLocked(action collection.Action) (applyOutcome, error) {
	entry, ok := m.table[action.Type()]
	if !ok {
		if m.cfg.Options.StrictMode {
			return applyOutcome{}, collection.ErrUnknownAction{ActionType: action.Type()}
		}
		m.logger.Warn("no handler for action", "action", string(action.Type()), "entity", m.cfg.EntityName)
		return applyOutcome{}, nil
	}
	if m.cfg.Options.DebugMode {
		m.logger.Debug("dispatch", "action", string(action.Type()), "behavior", entry.behavior, "entity", m.cfg.EntityName)
	}

	caps := m.caps()
	working := m.state.Clone(m.cfg.Comparators)
	if err := entry.handler.Apply(caps, &working, action); err != nil {
		return applyOutcome{}, err
	}
	m.state = working

	if entry.handler.Recording && !m.state.IsBatching {
		if rec, ok := m.table[collection.ActionAddToHistory]; ok {
			// The recording handler only reads state, so no clone cycle.
			if err := rec.handler.Apply(caps, &m.state, collection.AddToHistory{}); err != nil {
				m.logger.Warn("history record failed", "error", err)
			}
		}
	}
	return applyOutcome{handled: true, recording: entry.handler.Recording}, nil
}

// snapshotLocked builds the published view. Callers hold the mutex.
func (m *Manager[T]) snapshotLocked() collection.Snapshot[T] {
	c := m.cfg.Comparators
	pending := collection.Diff(m.state, c)
	return collection.Snapshot[T]{
		ContextID:      m.state.ContextID,
		PersistedItems: c.CloneItems(m.state.PersistedItems),
		DraftItems:     c.CloneItems(m.state.DraftItems),
		Baseline:       m.state.Baseline.Clone(c),
		SelectedItemID: m.state.SelectedItemID,
		IsLoading:      m.state.IsLoading,
		IsSaving:       m.state.IsSaving,
		IsCreating:     m.state.IsCreating,
		IsBatching:     m.state.IsBatching,
		Err:            m.state.Err,

		CanUndo: m.history.CanUndo(),
		CanRedo: m.history.CanRedo(),
		// Drafts count as pending creates even when the baseline holds them,
		// so the flag covers both divergence and never-persisted items.
		HasUnsavedChanges: pending.Count() > 0 || !m.state.MatchesBaseline(c),
		PendingCount:      pending.Count(),
	}
}

// subscriberList snapshots the subscriber set in registration order so
// callbacks run outside the mutex. Callers hold the mutex.
func (m *Manager[T]) subscriberList() []func(collection.Snapshot[T]) {
	if len(m.subscribers) == 0 {
		return nil
	}
	ids := make([]int, 0, len(m.subscribers))
	for id := range m.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]func(collection.Snapshot[T]), 0, len(ids))
	for _, id := range ids {
		out = append(out, m.subscribers[id])
	}
	return out
}

func notifySubscribers[T any](subs []func(collection.Snapshot[T]), snap collection.Snapshot[T]) {
	for _, fn := range subs {
		fn(snap)
	}
}

// publishLocked captures the snapshot and subscriber list while the caller
// still holds the mutex; the returned func must run after unlocking.
func (m *Manager[T]) publishLocked() func() {
	snap := m.snapshotLocked()
	subs := m.subscriberList()
	return func() { notifySubscribers(subs, snap) }
}

// Subscribe registers a callback receiving a snapshot after every successful
// dispatch and around load/save phase changes. The returned func cancels the
// subscription. Callbacks run outside the manager's lock, on the dispatching
// goroutine.
func (m *Manager[T]) Subscribe(fn func(collection.Snapshot[T])) func() {
	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		delete(m.subscribers, id)
		m.mu.Unlock()
	}
}

// Snapshot returns the current published view.
func (m *Manager[T]) Snapshot() collection.Snapshot[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// PendingChanges derives the three-way diff against the baseline.
func (m *Manager[T]) PendingChanges() collection.PendingChanges[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	return collection.Diff(m.state, m.cfg.Comparators)
}

// HasUnsavedChanges reports whether any change is still pending: a diff
// against the baseline, or a divergence the diff cannot see.
func (m *Manager[T]) HasUnsavedChanges() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return collection.Diff(m.state, m.cfg.Comparators).Count() > 0 ||
		!m.state.MatchesBaseline(m.cfg.Comparators)
}

func (m *Manager[T]) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.CanUndo()
}

func (m *Manager[T]) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.history.CanRedo()
}

// Convenience wrappers over Dispatch for the common action vocabulary.

func (m *Manager[T]) Add(item T) error {
	return m.Dispatch(collection.AddItem[T]{Item: item})
}

func (m *Manager[T]) Update(id string, mutate func(*T)) error {
	return m.Dispatch(collection.UpdateItem[T]{ID: id, Mutate: mutate})
}

func (m *Manager[T]) Delete(id string) error {
	return m.Dispatch(collection.DeleteItem{ID: id})
}

func (m *Manager[T]) DeleteMany(ids []string) error {
	return m.Dispatch(collection.DeleteItems{IDs: ids})
}

func (m *Manager[T]) Select(id string) error {
	return m.Dispatch(collection.SelectItem{ID: id})
}

func (m *Manager[T]) ClearSelection() error {
	return m.Dispatch(collection.ClearSelection{})
}

func (m *Manager[T]) Undo() error {
	return m.Dispatch(collection.Undo{})
}

func (m *Manager[T]) Redo() error {
	return m.Dispatch(collection.Redo{})
}

func (m *Manager[T]) BeginBatch() error {
	return m.Dispatch(collection.BeginBatch{})
}

func (m *Manager[T]) EndBatch() error {
	return m.Dispatch(collection.EndBatch{})
}

func (m *Manager[T]) UpdateInBatch(id string, mutate func(*T)) error {
	return m.Dispatch(collection.UpdateItemBatch[T]{ID: id, Mutate: mutate})
}

func (m *Manager[T]) DiscardChanges() error {
	return m.Dispatch(collection.DiscardChanges{})
}

func (m *Manager[T]) CaptureBaseline() error {
	return m.Dispatch(collection.CaptureBaseline{})
}

func (m *Manager[T]) ClearAll() error {
	return m.Dispatch(collection.ClearAll{})
}

func (m *Manager[T]) ClearDrafts() error {
	return m.Dispatch(collection.ClearDrafts{})
}

func (m *Manager[T]) ClearPersisted() error {
	return m.Dispatch(collection.ClearPersisted{})
}
