package collection

import (
	"strings"
	"testing"
)

func validConfig() Config[note] {
	return Config[note]{
		EntityName:  "note",
		ContextID:   "doc-1",
		Comparators: noteComparators(),
	}
}

func TestConfigValidate(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	cfg := validConfig()
	cfg.EntityName = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "entity name") {
		t.Fatalf("expected entity name error, got %v", err)
	}

	cfg = validConfig()
	cfg.ContextID = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "context id") {
		t.Fatalf("expected context id error, got %v", err)
	}

	cfg = validConfig()
	cfg.Comparators.GetID = nil
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "GetID") {
		t.Fatalf("expected GetID error, got %v", err)
	}
}

func TestConfigNormalizedFillsDefaults(t *testing.T) {
	cfg := validConfig().Normalized()

	if cfg.Options.HistoryLimit != DefaultHistoryLimit {
		t.Fatalf("history limit not defaulted: %d", cfg.Options.HistoryLimit)
	}
	if len(cfg.Behaviors) != 6 {
		t.Fatalf("expected full behavior set, got %v", cfg.Behaviors)
	}
	if cfg.Transforms.ForCreate == nil || cfg.Transforms.ForUpdate == nil || cfg.Transforms.FromAPI == nil {
		t.Fatalf("transforms not defaulted")
	}

	// Default transforms round-trip the item through JSON.
	payload, err := cfg.Transforms.ForCreate(note{ID: "a", Title: "one"})
	if err != nil {
		t.Fatalf("default ForCreate: %v", err)
	}
	got, err := cfg.Transforms.FromAPI(payload)
	if err != nil {
		t.Fatalf("default FromAPI: %v", err)
	}
	if got.ID != "a" || got.Title != "one" {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if _, err := cfg.Transforms.FromAPI(UndefinedPayload()); err == nil {
		t.Fatalf("default FromAPI accepted undefined payload")
	}
}

func TestConfigNormalizedKeepsExplicitValues(t *testing.T) {
	cfg := validConfig()
	cfg.Options.HistoryLimit = 7
	cfg.Behaviors = []string{BehaviorCRUD, BehaviorHistory}
	cfg = cfg.Normalized()

	if cfg.Options.HistoryLimit != 7 {
		t.Fatalf("explicit history limit overwritten: %d", cfg.Options.HistoryLimit)
	}
	if len(cfg.Behaviors) != 2 {
		t.Fatalf("explicit behaviors overwritten: %v", cfg.Behaviors)
	}
}

func TestComparatorDefaults(t *testing.T) {
	c := Comparators[note]{GetID: func(n note) string { return n.ID }}

	if !c.ItemsEqual(note{ID: "a", Tags: []string{"x"}}, note{ID: "a", Tags: []string{"x"}}) {
		t.Fatalf("reflect fallback equality failed")
	}
	if c.ItemsEqual(note{ID: "a"}, note{ID: "b"}) {
		t.Fatalf("distinct items compared equal")
	}
	if c.CloneItems(nil) != nil {
		t.Fatalf("nil slice clone must stay nil")
	}
	if got := c.IndexOf([]note{{ID: "a"}, {ID: "b"}}, "b"); got != 1 {
		t.Fatalf("IndexOf b = %d", got)
	}
	if got := c.IndexOf([]note{{ID: "a"}}, "zzz"); got != -1 {
		t.Fatalf("IndexOf missing = %d", got)
	}
}
