// Command editcore-demo runs one collection session against the configured
// adapter: load the context, add a note, save, and print the resulting
// snapshot. Adapter and blob drivers are selected through the EDITCORE_*
// environment variables.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"editcore/internal/engine"
	"editcore/pkg/collection"
)

type note struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

type sessionReport struct {
	Entity          string `json:"entity"`
	ContextID       string `json:"context_id"`
	PersistedCount  int    `json:"persisted_count"`
	DraftCount      int    `json:"draft_count"`
	PendingCount    int    `json:"pending_count"`
	BaselineVersion int    `json:"baseline_version"`
	Unsaved         bool   `json:"has_unsaved_changes"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "editcore-demo:", err)
		os.Exit(1)
	}
}

func run() error {
	entity := flag.String("entity", "note", "entity kind the adapter stores")
	contextID := flag.String("context", "demo", "context (parent scope) to edit")
	title := flag.String("title", "hello from editcore", "title of the note to add")
	flag.Parse()

	adapter, err := engine.OpenAdapter(*entity)
	if err != nil {
		return err
	}

	cfg := collection.Config[note]{
		EntityName: *entity,
		ContextID:  *contextID,
		API:        adapter,
		Comparators: collection.Comparators[note]{
			GetID: func(n note) string { return n.ID },
		},
	}
	logger := engine.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	m, err := engine.New(cfg, engine.WithLogger[note](logger))
	if err != nil {
		return err
	}

	ctx := context.Background()
	if err := m.Load(ctx); err != nil {
		return err
	}
	if err := m.Add(note{ID: uuid.NewString(), Title: *title}); err != nil {
		return err
	}
	if err := m.Save(ctx); err != nil {
		return err
	}

	snap := m.Snapshot()
	report := sessionReport{
		Entity:          *entity,
		ContextID:       snap.ContextID,
		PersistedCount:  len(snap.PersistedItems),
		DraftCount:      len(snap.DraftItems),
		PendingCount:    snap.PendingCount,
		BaselineVersion: snap.Baseline.Version,
		Unsaved:         snap.HasUnsavedChanges,
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
