package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"editcore/internal/blob"
	blobfs "editcore/internal/infra/blob/fs"
	blobmemory "editcore/internal/infra/blob/memory"
	blobs3 "editcore/internal/infra/blob/s3"
)

// OpenBlobStore selects a blob backend for the baseline archive using
// environment variables. Defaults to the filesystem driver.
//
//	EDITCORE_BLOB_DRIVER: fs|s3|memory (default fs)
//	EDITCORE_BLOB_FS_ROOT: directory root when driver=fs (default ./blobdata)
//	(S3 specific variables documented in the s3 driver package)
func OpenBlobStore(ctx context.Context) (blob.Store, error) {
	driver := os.Getenv("EDITCORE_BLOB_DRIVER")
	if driver == "" {
		driver = string(blob.DriverFilesystem)
	}
	switch blob.Driver(driver) {
	case blob.DriverFilesystem:
		return blobfs.New(os.Getenv("EDITCORE_BLOB_FS_ROOT"))
	case blob.DriverS3:
		return blobs3.OpenFromEnv(ctx)
	case blob.DriverMemory:
		return blobmemory.New(), nil
	default:
		return nil, fmt.Errorf("engine: unknown blob driver %s", driver)
	}
}

// BaselineExport is the archived form of one captured baseline.
type BaselineExport[T any] struct {
	Domain         string    `json:"domain,omitempty"`
	EntityName     string    `json:"entity"`
	ContextID      string    `json:"context_id"`
	Version        int       `json:"version"`
	CapturedAt     time.Time `json:"captured_at"`
	PersistedItems []T       `json:"persisted_items"`
	DraftItems     []T       `json:"draft_items,omitempty"`
}

// ExportBaseline packages the manager's current baseline for archiving.
func (m *Manager[T]) ExportBaseline() BaselineExport[T] {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.cfg.Comparators
	return BaselineExport[T]{
		Domain:         m.cfg.Domain,
		EntityName:     m.cfg.EntityName,
		ContextID:      m.cfg.ContextID,
		Version:        m.state.Baseline.Version,
		CapturedAt:     m.state.Baseline.Timestamp,
		PersistedItems: c.CloneItems(m.state.Baseline.PersistedItems),
		DraftItems:     c.CloneItems(m.state.Baseline.DraftItems),
	}
}

// BaselineArchive persists baseline exports as immutable versioned JSON
// objects in a blob store, keyed <domain>/<contextID>/baseline-<version>.json.
type BaselineArchive[T any] struct {
	store blob.Store
}

// NewBaselineArchive wraps a blob store as a baseline archive.
func NewBaselineArchive[T any](store blob.Store) *BaselineArchive[T] {
	return &BaselineArchive[T]{store: store}
}

// Key derives the object key for one archived baseline. The entity name
// stands in when the collection has no domain grouping.
func (a *BaselineArchive[T]) Key(export BaselineExport[T]) string {
	group := export.Domain
	if group == "" {
		group = export.EntityName
	}
	return fmt.Sprintf("%s/%s/baseline-%d.json", group, export.ContextID, export.Version)
}

// Archive stores one baseline export. Versions are immutable: archiving the
// same version twice fails on the existing key.
func (a *BaselineArchive[T]) Archive(ctx context.Context, export BaselineExport[T]) (blob.Info, error) {
	raw, err := json.Marshal(export)
	if err != nil {
		return blob.Info{}, fmt.Errorf("engine: encode baseline export: %w", err)
	}
	key := a.Key(export)
	info, err := a.store.Put(ctx, key, strings.NewReader(string(raw)), blob.PutOptions{
		ContentType: "application/json",
		Metadata: map[string]string{
			"entity":     export.EntityName,
			"context_id": export.ContextID,
			"version":    strconv.Itoa(export.Version),
		},
	})
	if err != nil {
		return blob.Info{}, fmt.Errorf("engine: archive baseline %s: %w", key, err)
	}
	return info, nil
}

// Load retrieves one archived baseline by domain group, context and version.
func (a *BaselineArchive[T]) Load(ctx context.Context, group, contextID string, version int) (BaselineExport[T], error) {
	key := fmt.Sprintf("%s/%s/baseline-%d.json", group, contextID, version)
	_, body, err := a.store.Get(ctx, key)
	if err != nil {
		return BaselineExport[T]{}, fmt.Errorf("engine: load baseline %s: %w", key, err)
	}
	defer func() { _ = body.Close() }()
	raw, err := io.ReadAll(body)
	if err != nil {
		return BaselineExport[T]{}, fmt.Errorf("engine: read baseline %s: %w", key, err)
	}
	var export BaselineExport[T]
	if err := json.Unmarshal(raw, &export); err != nil {
		return BaselineExport[T]{}, fmt.Errorf("engine: decode baseline %s: %w", key, err)
	}
	return export, nil
}

// Versions lists the archived baseline versions for a context in ascending
// order.
func (a *BaselineArchive[T]) Versions(ctx context.Context, group, contextID string) ([]int, error) {
	prefix := fmt.Sprintf("%s/%s/baseline-", group, contextID)
	infos, err := a.store.List(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("engine: list baselines %s: %w", prefix, err)
	}
	versions := make([]int, 0, len(infos))
	for _, info := range infos {
		name := strings.TrimPrefix(info.Key, prefix)
		name = strings.TrimSuffix(name, ".json")
		version, err := strconv.Atoi(name)
		if err != nil {
			continue
		}
		versions = append(versions, version)
	}
	sort.Ints(versions)
	return versions, nil
}
