package engine

import (
	"context"
	"strings"
	"testing"

	blobmemory "editcore/internal/infra/blob/memory"
	"editcore/pkg/collection"
)

func TestBaselineArchiveRoundTrip(t *testing.T) {
	m := mustManager(t, testConfig())
	seedPersisted(t, m, card{ID: "a", Label: "one"}, card{ID: "b", Label: "two"})

	archive := NewBaselineArchive[card](blobmemory.New())
	export := m.ExportBaseline()
	if export.Version != 1 {
		t.Fatalf("export version = %d", export.Version)
	}

	info, err := archive.Archive(context.Background(), export)
	if err != nil {
		t.Fatalf("archive: %v", err)
	}
	if info.Key != "card/board-1/baseline-1.json" {
		t.Fatalf("unexpected key %q", info.Key)
	}
	if info.ContentType != "application/json" || info.Metadata["version"] != "1" {
		t.Fatalf("object attributes wrong: %+v", info)
	}

	loaded, err := archive.Load(context.Background(), "card", "board-1", 1)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.EntityName != "card" || loaded.ContextID != "board-1" {
		t.Fatalf("loaded header wrong: %+v", loaded)
	}
	requireIDs(t, loaded.PersistedItems, "a", "b")
	if loaded.PersistedItems[0].Label != "one" {
		t.Fatalf("item payload lost: %+v", loaded.PersistedItems[0])
	}
}

func TestBaselineArchiveVersionsAreImmutable(t *testing.T) {
	m := mustManager(t, testConfig())
	seedPersisted(t, m, card{ID: "a"})

	archive := NewBaselineArchive[card](blobmemory.New())
	ctx := context.Background()

	first := m.ExportBaseline()
	if _, err := archive.Archive(ctx, first); err != nil {
		t.Fatalf("archive v1: %v", err)
	}
	if _, err := archive.Archive(ctx, first); err == nil {
		t.Fatalf("re-archiving an existing version must fail")
	}

	mustDispatch(t, m, collection.AddItem[card]{Item: card{ID: "b"}})
	mustDispatch(t, m, collection.CommitChanges{})
	if _, err := archive.Archive(ctx, m.ExportBaseline()); err != nil {
		t.Fatalf("archive v2: %v", err)
	}

	versions, err := archive.Versions(ctx, "card", "board-1")
	if err != nil {
		t.Fatalf("versions: %v", err)
	}
	if len(versions) != 2 || versions[0] != 1 || versions[1] != 2 {
		t.Fatalf("versions = %v", versions)
	}
}

func TestBaselineArchiveKeyGroupsByDomain(t *testing.T) {
	archive := NewBaselineArchive[card](blobmemory.New())

	withDomain := BaselineExport[card]{Domain: "boards", EntityName: "card", ContextID: "b1", Version: 3}
	if key := archive.Key(withDomain); !strings.HasPrefix(key, "boards/b1/") {
		t.Fatalf("domain key = %q", key)
	}
	// Entity name stands in when no domain grouping is configured.
	withoutDomain := BaselineExport[card]{EntityName: "card", ContextID: "b1", Version: 3}
	if key := archive.Key(withoutDomain); key != "card/b1/baseline-3.json" {
		t.Fatalf("fallback key = %q", key)
	}
}
