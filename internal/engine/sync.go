package engine

import (
	"context"
	"fmt"
	"time"

	"editcore/pkg/collection"
)

// Load fetches every record for the configured context through the adapter,
// replaces the persisted sequence, recaptures the baseline and reseeds the
// undo history at the new agreement point. Draft items survive a reload. On
// any failure the item sequences are left untouched and the error lands in
// the state for subscribers.
func (m *Manager[T]) Load(ctx context.Context) (err error) {
	if m.cfg.API == nil {
		return collection.ErrNoAdapter
	}
	start := m.now()
	ctx, span := m.tracer.Start(ctx, "load")
	defer func() {
		span.End(err)
		m.observe(ctx, "load", start, err)
	}()

	m.mu.Lock()
	m.state.IsLoading = true
	m.state.Err = nil
	notify := m.publishLocked()
	m.mu.Unlock()
	notify()

	res := m.cfg.API.Fetch(ctx, m.cfg.ContextID)
	var items []T
	if res.Ok() {
		payloads := res.Value()
		items = make([]T, 0, len(payloads))
		for _, payload := range payloads {
			item, terr := m.cfg.Transforms.FromAPI(payload)
			if terr != nil {
				err = fmt.Errorf("engine: transform fetched record: %w", terr)
				break
			}
			items = append(items, item)
		}
	} else {
		err = fmt.Errorf("engine: fetch %s: %w", m.cfg.EntityName, res.Err())
	}

	m.mu.Lock()
	m.state.IsLoading = false
	if err != nil {
		m.state.Err = err
	} else {
		caps := m.caps()
		m.state.PersistedItems = items
		dropVanishedSelection(caps, &m.state)
		// Baseline capture reseeds the undo history at the loaded state.
		if capErr := applyCaptureBaseline(caps, &m.state, collection.CaptureBaseline{}); capErr != nil {
			err = capErr
			m.state.Err = err
		}
	}
	notify = m.publishLocked()
	m.mu.Unlock()
	notify()
	return err
}

// Save pushes the pending changes through the adapter: creates first, then
// updates, then deletes, one call at a time. The first failure aborts the
// remainder, records the error in the state and leaves the baseline
// untouched, so already-applied calls stay reflected as persisted items and
// the failed change is still pending on the next save. Only when every call
// succeeded are the drafts merged and the baseline recaptured.
func (m *Manager[T]) Save(ctx context.Context) (err error) {
	if m.cfg.API == nil {
		return collection.ErrNoAdapter
	}
	start := m.now()
	ctx, span := m.tracer.Start(ctx, "save")
	defer func() {
		span.End(err)
		m.observe(ctx, "save", start, err)
	}()

	m.mu.Lock()
	if m.state.IsSaving {
		m.mu.Unlock()
		err = fmt.Errorf("engine: save already in flight for %s", m.cfg.EntityName)
		return err
	}
	changes := collection.Diff(m.state, m.cfg.Comparators)
	if changes.Empty() && m.state.MatchesBaseline(m.cfg.Comparators) {
		m.mu.Unlock()
		return nil
	}
	m.state.IsSaving = true
	m.state.Err = nil
	notify := m.publishLocked()
	m.mu.Unlock()
	notify()

	defer func() {
		m.mu.Lock()
		m.state.IsSaving = false
		m.state.IsCreating = false
		if err != nil {
			m.state.Err = err
		}
		notify := m.publishLocked()
		m.mu.Unlock()
		notify()
	}()

	if err = m.saveCreates(ctx, changes.Creates); err != nil {
		return err
	}
	if err = m.saveUpdates(ctx, changes.Updates); err != nil {
		return err
	}
	if err = m.saveDeletes(ctx, changes.Deletes); err != nil {
		return err
	}

	m.mu.Lock()
	err = applyCommitChanges(m.caps(), &m.state, collection.CommitChanges{})
	m.mu.Unlock()
	return err
}

// saveCreates persists each draft and replaces it with the adapter's returned
// record, carrying any server-assigned identity. An empty returned payload
// keeps the local draft value.
func (m *Manager[T]) saveCreates(ctx context.Context, creates []T) error {
	if len(creates) == 0 {
		return nil
	}
	m.mu.Lock()
	m.state.IsCreating = true
	notify := m.publishLocked()
	m.mu.Unlock()
	notify()

	c := m.cfg.Comparators
	for _, draft := range creates {
		draftID := c.GetID(draft)
		payload, err := m.cfg.Transforms.ForCreate(draft)
		if err != nil {
			return fmt.Errorf("engine: project create %s: %w", draftID, err)
		}
		res := m.cfg.API.Create(ctx, m.cfg.ContextID, payload)
		if !res.Ok() {
			return fmt.Errorf("engine: create %s: %w", draftID, res.Err())
		}
		persisted := draft
		if !res.Value().IsEmpty() {
			persisted, err = m.cfg.Transforms.FromAPI(res.Value())
			if err != nil {
				return fmt.Errorf("engine: transform created %s: %w", draftID, err)
			}
		}
		m.mu.Lock()
		m.state.DraftItems, _ = removeByID(c, m.state.DraftItems, draftID)
		if i := c.IndexOf(m.state.PersistedItems, c.GetID(persisted)); i >= 0 {
			m.state.PersistedItems[i] = c.CloneItem(persisted)
		} else {
			m.state.PersistedItems = append(m.state.PersistedItems, c.CloneItem(persisted))
		}
		if m.state.SelectedItemID == draftID {
			// Identity reassignment keeps the focus on the same item.
			m.state.SelectedItemID = c.GetID(persisted)
		}
		m.mu.Unlock()
	}

	m.mu.Lock()
	m.state.IsCreating = false
	notify = m.publishLocked()
	m.mu.Unlock()
	notify()
	return nil
}

func (m *Manager[T]) saveUpdates(ctx context.Context, updates []T) error {
	c := m.cfg.Comparators
	for _, item := range updates {
		id := c.GetID(item)
		payload, err := m.cfg.Transforms.ForUpdate(item)
		if err != nil {
			return fmt.Errorf("engine: project update %s: %w", id, err)
		}
		res := m.cfg.API.Update(ctx, id, payload)
		if !res.Ok() {
			return fmt.Errorf("engine: update %s: %w", id, res.Err())
		}
		// An undefined payload means the server returned no body and the
		// local value stands.
		if res.Value().IsEmpty() {
			continue
		}
		updated, err := m.cfg.Transforms.FromAPI(res.Value())
		if err != nil {
			return fmt.Errorf("engine: transform updated %s: %w", id, err)
		}
		m.mu.Lock()
		if i := c.IndexOf(m.state.PersistedItems, c.GetID(updated)); i >= 0 {
			m.state.PersistedItems[i] = c.CloneItem(updated)
		}
		m.mu.Unlock()
	}
	return nil
}

func (m *Manager[T]) saveDeletes(ctx context.Context, deletes []T) error {
	c := m.cfg.Comparators
	for _, item := range deletes {
		id := c.GetID(item)
		res := m.cfg.API.Delete(ctx, id)
		if !res.Ok() {
			return fmt.Errorf("engine: delete %s: %w", id, res.Err())
		}
	}
	return nil
}

func (m *Manager[T]) observe(ctx context.Context, operation string, start time.Time, err error) {
	duration := m.now().Sub(start)
	m.metrics.Observe(ctx, operation, err == nil, duration)
	entry := AuditEntry{
		Operation:  operation,
		Status:     AuditStatusSuccess,
		Domain:     m.cfg.Domain,
		EntityName: m.cfg.EntityName,
		ContextID:  m.cfg.ContextID,
		Duration:   duration,
		OccurredAt: m.now(),
	}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Error = err.Error()
	}
	m.audit.Record(ctx, entry)
}
