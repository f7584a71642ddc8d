// Package memory provides an in-memory reference adapter, used by tests and
// by purely local deployments that still want save/load round-trips.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"editcore/pkg/collection"
)

// Compile-time contract assertion ensuring the store satisfies the adapter interface.
var _ collection.Adapter = (*Store)(nil)

type record struct {
	contextID string
	doc       map[string]any
}

// Store keeps records for one entity kind in process memory, preserving
// insertion order per context. All methods are safe for concurrent use.
type Store struct {
	entity string

	mu    sync.Mutex
	order []string
	byID  map[string]*record
}

// NewStore constructs an empty store for the named entity kind.
func NewStore(entity string) *Store {
	if entity == "" {
		entity = "record"
	}
	return &Store{
		entity: entity,
		byID:   make(map[string]*record),
	}
}

// Len reports the number of stored records across all contexts.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.order)
}

// Fetch implements collection.Adapter.
func (s *Store) Fetch(_ context.Context, contextID string) collection.Result[[]collection.Payload] {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]collection.Payload, 0, len(s.order))
	for _, id := range s.order {
		rec := s.byID[id]
		if rec.contextID != contextID {
			continue
		}
		payload, err := collection.NewPayloadFromValue(rec.doc)
		if err != nil {
			return collection.Fail[[]collection.Payload](fmt.Errorf("memory: encode %s %s: %w", s.entity, id, err))
		}
		out = append(out, payload)
	}
	return collection.Ok(out)
}

// Create implements collection.Adapter. A record arriving without an id gets
// a server-assigned uuid, mirroring backends that own identity.
func (s *Store) Create(_ context.Context, contextID string, payload collection.Payload) collection.Result[collection.Payload] {
	doc, err := decodeDoc(payload)
	if err != nil {
		return collection.Fail[collection.Payload](fmt.Errorf("memory: create %s: %w", s.entity, err))
	}
	id, _ := doc["id"].(string)
	if id == "" {
		id = uuid.NewString()
	}
	doc["id"] = id

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[id]; exists {
		return collection.Fail[collection.Payload](fmt.Errorf("memory: %s %s already exists", s.entity, id))
	}
	s.order = append(s.order, id)
	s.byID[id] = &record{contextID: contextID, doc: doc}

	out, err := collection.NewPayloadFromValue(doc)
	if err != nil {
		return collection.Fail[collection.Payload](fmt.Errorf("memory: encode %s %s: %w", s.entity, id, err))
	}
	return collection.Ok(out)
}

// Update implements collection.Adapter, shallow-merging the payload's fields
// into the stored record and returning the merged result.
func (s *Store) Update(_ context.Context, id string, payload collection.Payload) collection.Result[collection.Payload] {
	patch, err := decodeDoc(payload)
	if err != nil {
		return collection.Fail[collection.Payload](fmt.Errorf("memory: update %s %s: %w", s.entity, id, err))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.byID[id]
	if !ok {
		return collection.Fail[collection.Payload](collection.ErrNotFound{Entity: s.entity, ID: id})
	}
	for key, value := range patch {
		if key == "id" {
			continue
		}
		rec.doc[key] = value
	}

	out, err := collection.NewPayloadFromValue(rec.doc)
	if err != nil {
		return collection.Fail[collection.Payload](fmt.Errorf("memory: encode %s %s: %w", s.entity, id, err))
	}
	return collection.Ok(out)
}

// Delete implements collection.Adapter.
func (s *Store) Delete(_ context.Context, id string) collection.Result[collection.Unit] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[id]; !ok {
		return collection.Fail[collection.Unit](collection.ErrNotFound{Entity: s.entity, ID: id})
	}
	delete(s.byID, id)
	for i, stored := range s.order {
		if stored == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return collection.Ok(collection.Unit{})
}

func decodeDoc(payload collection.Payload) (map[string]any, error) {
	if payload.IsEmpty() {
		return map[string]any{}, nil
	}
	doc, ok := collection.DecodePayload[map[string]any](payload)
	if !ok {
		return nil, fmt.Errorf("payload is not a json object")
	}
	return doc, nil
}
