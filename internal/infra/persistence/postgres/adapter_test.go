package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"editcore/pkg/collection"
)

func TestNewStoreAppliesDefaults(t *testing.T) {
	var gotDriver, gotDSN string
	openMu.Lock()
	orig := sqlOpen
	openMu.Unlock()
	swap := func(driver, dsn string) (*sql.DB, error) {
		gotDriver, gotDSN = driver, dsn
		return nil, errors.New("sentinel")
	}
	openMu.Lock()
	sqlOpen = swap
	openMu.Unlock()
	defer func() {
		openMu.Lock()
		sqlOpen = orig
		openMu.Unlock()
	}()

	if _, err := NewStore("", ""); err == nil {
		t.Fatalf("expected open error")
	}
	if gotDriver != defaultDriver {
		t.Fatalf("driver = %q", gotDriver)
	}
	if gotDSN != defaultDSN {
		t.Fatalf("dsn = %q", gotDSN)
	}
}

// TestIntegrationRoundTrip exercises a live server and is skipped unless
// EDITCORE_POSTGRES_TEST_DSN is set.
func TestIntegrationRoundTrip(t *testing.T) {
	dsn := os.Getenv("EDITCORE_POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("EDITCORE_POSTGRES_TEST_DSN not set")
	}

	entity := "itest-" + uuid.NewString()
	store, err := NewStore(dsn, entity)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_, _ = store.DB().ExecContext(ctx, `DELETE FROM records WHERE entity = $1`, entity)
		_ = store.Close()
	})

	ctx := context.Background()
	payload, err := collection.NewPayloadFromValue(map[string]any{"id": "a", "label": "one"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if res := store.Create(ctx, "board-1", payload); !res.Ok() {
		t.Fatalf("create: %v", res.Err())
	}

	patch, err := collection.NewPayloadFromValue(map[string]any{"label": "two"})
	if err != nil {
		t.Fatalf("encode patch: %v", err)
	}
	res := store.Update(ctx, "a", patch)
	if !res.Ok() {
		t.Fatalf("update: %v", res.Err())
	}
	merged, ok := collection.DecodePayload[map[string]any](res.Value())
	if !ok || merged["label"] != "two" {
		t.Fatalf("merged = %v", merged)
	}

	fetched := store.Fetch(ctx, "board-1")
	if !fetched.Ok() || len(fetched.Value()) != 1 {
		t.Fatalf("fetch: %v", fetched)
	}

	if res := store.Delete(ctx, "a"); !res.Ok() {
		t.Fatalf("delete: %v", res.Err())
	}
	var notFound collection.ErrNotFound
	if res := store.Delete(ctx, "a"); res.Ok() || !errors.As(res.Err(), &notFound) {
		t.Fatalf("expected ErrNotFound, got %v", res.Err())
	}
}
