package collection

import (
	"errors"
	"fmt"
)

// DefaultHistoryLimit bounds the undo/redo log when Options.HistoryLimit is
// unset.
const DefaultHistoryLimit = 50

// Options tune engine-wide policies.
type Options struct {
	// HistoryLimit bounds the undo/redo log; DefaultHistoryLimit when <= 0.
	HistoryLimit int
	// AutoSave runs a save after every recording dispatch that completes
	// outside a batch span, unless a save is already in flight.
	AutoSave bool
	// StrictMode turns dispatch-table misses and invariant violations into
	// errors. The default policy favors UI robustness: log and ignore.
	StrictMode bool
	// DebugMode logs every dispatched action.
	DebugMode bool
}

// Config describes one managed collection. It is consumed at manager
// construction time and never mutated afterwards.
type Config[T any] struct {
	// Domain groups related collections, e.g. "redaction" or "ai".
	Domain string
	// EntityName names the record kind, e.g. "selection" or "rule".
	EntityName string
	// ContextID scopes the collection to its owning parent, e.g. a document.
	ContextID string
	// API persists changes. May be nil for purely client-side collections,
	// in which case Load and Save fail with ErrNoAdapter.
	API Adapter
	// Transforms project items to and from adapter payloads.
	Transforms Transforms[T]
	// Comparators supply identity and equality for the opaque item type.
	Comparators Comparators[T]
	// Behaviors lists the behavior set to compose, by name. Empty means the
	// full built-in set.
	Behaviors []string
	Options   Options
}

// Validate checks the construction-time requirements.
func (c Config[T]) Validate() error {
	if c.EntityName == "" {
		return errors.New("collection: config requires an entity name")
	}
	if c.ContextID == "" {
		return fmt.Errorf("collection: config for %s requires a context id", c.EntityName)
	}
	if err := c.Comparators.Validate(); err != nil {
		return fmt.Errorf("collection: config for %s: %w", c.EntityName, err)
	}
	return nil
}

// Normalized returns a copy with every optional hook and limit filled with
// its default, so downstream code never branches on nil.
func (c Config[T]) Normalized() Config[T] {
	c.Transforms = c.Transforms.normalized()
	if c.Options.HistoryLimit <= 0 {
		c.Options.HistoryLimit = DefaultHistoryLimit
	}
	if len(c.Behaviors) == 0 {
		c.Behaviors = []string{
			BehaviorHistory,
			BehaviorCRUD,
			BehaviorChangeTracking,
			BehaviorBatch,
			BehaviorSelection,
			BehaviorBulk,
		}
	}
	return c
}
