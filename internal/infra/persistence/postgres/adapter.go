// Package postgres provides a reference adapter backed by a PostgreSQL
// server, storing one JSONB document per record.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver

	"editcore/pkg/collection"
)

// Compile-time contract assertion ensuring the store satisfies the adapter interface.
var _ collection.Adapter = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/editcore?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store persists records for one entity kind in a records table shared by all
// entity kinds on the same database. Update responses return the merged
// document, mirroring backends that echo the stored record.
type Store struct {
	entity string
	db     *sql.DB
}

// NewStore opens a connection using the provided DSN (falling back to
// defaultDSN), pings the server and ensures the records table exists.
func NewStore(dsn, entity string) (*Store, error) {
	if entity == "" {
		entity = "record"
	}
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	ctx := context.Background()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS records (
		seq BIGSERIAL PRIMARY KEY,
		entity TEXT NOT NULL,
		context_id TEXT NOT NULL,
		id TEXT NOT NULL,
		payload JSONB NOT NULL,
		UNIQUE(entity, id)
	)`); err != nil {
		return nil, fmt.Errorf("postgres: create records table: %w", err)
	}
	return &Store{entity: entity, db: db}, nil
}

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// Fetch implements collection.Adapter, returning records in insertion order.
func (s *Store) Fetch(ctx context.Context, contextID string) collection.Result[[]collection.Payload] {
	rows, err := s.db.QueryContext(ctx,
		`SELECT payload FROM records WHERE entity = $1 AND context_id = $2 ORDER BY seq`,
		s.entity, contextID)
	if err != nil {
		return collection.Fail[[]collection.Payload](fmt.Errorf("postgres: select %s: %w", s.entity, err))
	}
	defer func() { _ = rows.Close() }()

	out := make([]collection.Payload, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return collection.Fail[[]collection.Payload](fmt.Errorf("postgres: scan %s: %w", s.entity, err))
		}
		out = append(out, collection.NewPayload(raw))
	}
	if err := rows.Err(); err != nil {
		return collection.Fail[[]collection.Payload](fmt.Errorf("postgres: iterate %s: %w", s.entity, err))
	}
	return collection.Ok(out)
}

// Create implements collection.Adapter, assigning a uuid to records arriving
// without an id.
func (s *Store) Create(ctx context.Context, contextID string, payload collection.Payload) collection.Result[collection.Payload] {
	doc, err := decodeDoc(payload)
	if err != nil {
		return collection.Fail[collection.Payload](fmt.Errorf("postgres: create %s: %w", s.entity, err))
	}
	id, _ := doc["id"].(string)
	if id == "" {
		id = uuid.NewString()
	}
	doc["id"] = id
	raw, err := json.Marshal(doc)
	if err != nil {
		return collection.Fail[collection.Payload](fmt.Errorf("postgres: encode %s %s: %w", s.entity, id, err))
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO records(entity, context_id, id, payload) VALUES($1, $2, $3, $4)`,
		s.entity, contextID, id, raw); err != nil {
		return collection.Fail[collection.Payload](fmt.Errorf("postgres: insert %s %s: %w", s.entity, id, err))
	}
	return collection.Ok(collection.NewPayload(raw))
}

// Update implements collection.Adapter, shallow-merging the payload into the
// stored document and returning the merged result.
func (s *Store) Update(ctx context.Context, id string, payload collection.Payload) collection.Result[collection.Payload] {
	patch, err := decodeDoc(payload)
	if err != nil {
		return collection.Fail[collection.Payload](fmt.Errorf("postgres: update %s %s: %w", s.entity, id, err))
	}

	var raw []byte
	row := s.db.QueryRowContext(ctx,
		`SELECT payload FROM records WHERE entity = $1 AND id = $2`, s.entity, id)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return collection.Fail[collection.Payload](collection.ErrNotFound{Entity: s.entity, ID: id})
		}
		return collection.Fail[collection.Payload](fmt.Errorf("postgres: select %s %s: %w", s.entity, id, err))
	}
	doc := map[string]any{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return collection.Fail[collection.Payload](fmt.Errorf("postgres: decode %s %s: %w", s.entity, id, err))
	}
	for key, value := range patch {
		if key == "id" {
			continue
		}
		doc[key] = value
	}
	merged, err := json.Marshal(doc)
	if err != nil {
		return collection.Fail[collection.Payload](fmt.Errorf("postgres: encode %s %s: %w", s.entity, id, err))
	}
	if _, err := s.db.ExecContext(ctx,
		`UPDATE records SET payload = $1 WHERE entity = $2 AND id = $3`,
		merged, s.entity, id); err != nil {
		return collection.Fail[collection.Payload](fmt.Errorf("postgres: update %s %s: %w", s.entity, id, err))
	}
	return collection.Ok(collection.NewPayload(merged))
}

// Delete implements collection.Adapter.
func (s *Store) Delete(ctx context.Context, id string) collection.Result[collection.Unit] {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM records WHERE entity = $1 AND id = $2`, s.entity, id)
	if err != nil {
		return collection.Fail[collection.Unit](fmt.Errorf("postgres: delete %s %s: %w", s.entity, id, err))
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return collection.Fail[collection.Unit](fmt.Errorf("postgres: delete %s %s: %w", s.entity, id, err))
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
