package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"editcore/internal/blob"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	info, err := store.Put(ctx, "boards/b1/baseline-1.json", strings.NewReader(`{"v":1}`), blob.PutOptions{
		ContentType: "application/json",
		Metadata:    map[string]string{"version": "1"},
	})
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Size != 7 || info.ETag == "" {
		t.Fatalf("put info: %+v", info)
	}

	got, body, err := store.Get(ctx, "boards/b1/baseline-1.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer func() { _ = body.Close() }()
	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `{"v":1}` {
		t.Fatalf("body = %q", data)
	}
	if got.ContentType != "application/json" || got.Metadata["version"] != "1" {
		t.Fatalf("sidecar attributes lost: %+v", got)
	}
	if got.ETag != info.ETag {
		t.Fatalf("etag changed between put and get")
	}
}

func TestPutIsCreateOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := store.Put(ctx, "k", strings.NewReader("a"), blob.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "k", strings.NewReader("b"), blob.PutOptions{}); err == nil {
		t.Fatalf("overwrite accepted")
	}
}

func TestKeySanitization(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, key := range []string{"", "  ", "/abs/path", "../escape", "a/../../b"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), blob.PutOptions{}); err == nil {
			t.Fatalf("key %q accepted", key)
		}
	}
}

func TestDeleteRemovesDataAndSidecar(t *testing.T) {
	root := t.TempDir()
	store, err := New(root)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()
	if _, err := store.Put(ctx, "a/k", strings.NewReader("x"), blob.PutOptions{}); err != nil {
		t.Fatalf("put: %v", err)
	}

	existed, err := store.Delete(ctx, "a/k")
	if err != nil || !existed {
		t.Fatalf("delete: %v %v", existed, err)
	}
	if _, err := os.Stat(filepath.Join(root, "a", "k"+sidecarSuffix)); !os.IsNotExist(err) {
		t.Fatalf("sidecar survived delete")
	}
	existed, err = store.Delete(ctx, "a/k")
	if err != nil || existed {
		t.Fatalf("second delete: %v %v", existed, err)
	}
}

func TestListWalksSidecars(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	for _, key := range []string{"a/2", "a/1", "b/1"} {
		if _, err := store.Put(ctx, key, strings.NewReader("x"), blob.PutOptions{}); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	infos, err := store.List(ctx, "a/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(infos) != 2 || infos[0].Key != "a/1" || infos[1].Key != "a/2" {
		t.Fatalf("list = %+v", infos)
	}
}

func TestPresignIsGetOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	url, err := store.PresignURL(ctx, "a/k", blob.SignedURLOptions{})
	if err != nil {
		t.Fatalf("presign: %v", err)
	}
	if !strings.Contains(url, "/a/k") {
		t.Fatalf("url = %q", url)
	}
	if _, err := store.PresignURL(ctx, "a/k", blob.SignedURLOptions{Method: "PUT"}); err == nil {
		t.Fatalf("PUT presign accepted")
	}
}
