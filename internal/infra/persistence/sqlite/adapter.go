// Package sqlite provides a file-backed reference adapter over an embedded
// SQLite database, storing one JSON document per record.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"editcore/pkg/collection"
)

// Compile-time contract assertion ensuring the store satisfies the adapter interface.
var _ collection.Adapter = (*Store)(nil)

// Store persists records for one entity kind in a records table shared by all
// entity kinds using the same database file. Update responses carry no body,
// mirroring backends that answer 204 No Content; the engine keeps the local
// value in that case.
type Store struct {
	entity string
	db     *sql.DB
	path   string
}

// NewStore opens (creating if needed) the database at path and ensures the
// records table exists. An empty path defaults to editcore.db.
func NewStore(path, entity string) (*Store, error) {
	if entity == "" {
		entity = "record"
	}
	if path == "" {
		path = "editcore.db"
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil && !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("sqlite: create dirs: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS records (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		entity TEXT NOT NULL,
		context_id TEXT NOT NULL,
		id TEXT NOT NULL,
		payload BLOB NOT NULL,
		UNIQUE(entity, id)
	)`); err != nil {
		return nil, fmt.Errorf("sqlite: create records table: %w", err)
	}
	return &Store{entity: entity, db: db, path: path}, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Fetch implements collection.Adapter, returning records in insertion order.
func (s *Store) Fetch(ctx context.Context, contextID string) collection.Result[[]collection.Payload] {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM records WHERE entity = ? AND context_id = ? ORDER BY seq`,
		s.entity, contextID)
	if err != nil {
		return collection.Fail[[]collection.Payload](fmt.Errorf("sqlite: select %s: %w", s.entity, err))
	}
	defer func() { _ = rows.Close() }()

	out := make([]collection.Payload, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return collection.Fail[[]collection.Payload](fmt.Errorf("sqlite: scan %s: %w", s.entity, err))
		}
		out = append(out, collection.NewPayload(raw))
	}
	if err := rows.Err(); err != nil {
		return collection.Fail[[]collection.Payload](fmt.Errorf("sqlite: iterate %s: %w", s.entity, err))
	}
	return collection.Ok(out)
}

// Create implements collection.Adapter, assigning a uuid to records arriving
// without an id.
func (s *Store) Create(ctx context.Context, contextID string, payload collection.Payload) collection.Result[collection.Payload] {
	doc, err := decodeDoc(payload)
	if err != nil {
		return collection.Fail[collection.Payload](fmt.Errorf("sqlite: create %s: %w", s.entity, err))
	}
	id, _ := doc["id"].(string)
	if id == "" {
		id = uuid.NewString()
	}
	doc["id"] = id
	raw, err := json.Marshal(doc)
	if err != nil {
		return collection.Fail[collection.Payload](fmt.Errorf("sqlite: encode %s %s: %w", s.entity, id, err))
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO records(entity, context_id, id, payload) VALUES(?, ?, ?, ?)`,
		s.entity, contextID, id, raw); err != nil {
		return collection.Fail[collection.Payload](fmt.Errorf("sqlite: insert %s %s: %w", s.entity, id, err))
	}
	return collection.Ok(collection.NewPayload(raw))
}

// Update implements collection.Adapter, shallow-merging the payload into the
// stored document. The result is undefined: no body comes back.
func (s *Store) Update(ctx context.Context, id string, payload collection.Payload) collection.Result[collection.Payload] {
	patch, err := decodeDoc(payload)
	if err != nil {
		return collection.Fail[collection.Payload](fmt.Errorf("sqlite: update %s %s: %w", s.entity, id, err))
	}

	var raw []byte
	row := s.db.QueryRowContext(ctx,
		`SELECT payload FROM records WHERE entity = ? AND id = ?`, s.entity, id)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return collection.Fail[collection.Payload](collection.ErrNotFound{Entity: s.entity, ID: id})
		}
		return collection.Fail[collection.Payload](fmt.Errorf("sqlite: select %s %s: %w", s.entity, id, err))
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return collection.Fail[collection.Payload](fmt.Errorf("sqlite: decode %s %s: %w", s.entity, id, err))
	}
	for key, value := range patch {
		if key == "id" {
			continue
		}
		doc[key] = value
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return collection.Fail[collection.Payload](fmt.Errorf("sqlite: encode %s %s: %w", s.entity, id, err))
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE records SET payload = ? WHERE entity = ? AND id = ?`,
		merged, s.entity, id); err != nil {
		return collection.Fail[collection.Payload](fmt.Errorf("sqlite: update %s %s: %w", s.entity, id, err))
	}
	return collection.Ok(collection.UndefinedPayload())
}

// Delete implements collection.Adapter.
func (s *Store) Delete(ctx context.Context, id string) collection.Result[collection.Unit] {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE entity = ? AND id = ?`, s.entity, id)
	if err != nil {
		return collection.Fail[collection.Unit](fmt.Errorf("sqlite: delete %s %s: %w", s.entity, id, err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return collection.Fail[collection.Unit](fmt.Errorf("sqlite: delete %s %s: %w", s.entity, id, err))
	}
	if affected == 0 {
		return collection.Fail[collection.Unit](collection.ErrNotFound{Entity: s.entity, ID: id})
	}
	return collection.Ok(collection.Unit{})
}

func decodeDoc(payload collection.Payload) (map[string]any, error) {
	if payload.IsEmpty() {
		return map[string]any{}, nil
	}
	doc, ok := collection.DecodePayload[map[string]any](payload)
	if !ok {
		return nil, errors.New("payload is not a json object")
	}
	return doc, nil
}
