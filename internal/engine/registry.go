package engine

import (
	"fmt"
	"sort"

	"editcore/pkg/collection"
)

// Registry maps behavior names to behavior definitions. Managers resolve
// their configured behavior set against a registry at construction time;
// hosts register custom behaviors alongside the built-ins.
type Registry[T any] struct {
	behaviors map[string]collection.Behavior[T]
}

// NewRegistry constructs an empty registry.
func NewRegistry[T any]() *Registry[T] {
	return &Registry[T]{behaviors: make(map[string]collection.Behavior[T])}
}

// DefaultRegistry returns a registry holding the full built-in behavior set.
func DefaultRegistry[T any]() *Registry[T] {
	reg := NewRegistry[T]()
	for _, b := range []collection.Behavior[T]{
		historyBehavior[T](),
		crudBehavior[T](),
		changeTrackingBehavior[T](),
		batchBehavior[T](),
		selectionBehavior[T](),
		bulkBehavior[T](),
	} {
		if err := reg.Register(b); err != nil {
			panic(fmt.Errorf("engine: register built-in behavior %s: %w", b.Name, err))
		}
	}
	return reg
}

// Register adds a behavior definition.
func (r *Registry[T]) Register(b collection.Behavior[T]) error {
	if b.Name == "" {
		return fmt.Errorf("engine: behavior requires a name")
	}
	if len(b.Handlers) == 0 {
		return fmt.Errorf("engine: behavior %s declares no handlers", b.Name)
	}
	if _, ok := r.behaviors[b.Name]; ok {
		return fmt.Errorf("engine: behavior %s already registered", b.Name)
	}
	r.behaviors[b.Name] = b
	return nil
}

// Names lists the registered behavior names in sorted order.
func (r *Registry[T]) Names() []string {
	out := make([]string, 0, len(r.behaviors))
	for name := range r.behaviors {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Resolve looks up the named behaviors, validates their declared
// dependencies against the requested set and returns them ordered by
// ascending priority so observation behaviors run before mutation behaviors.
func (r *Registry[T]) Resolve(names []string) ([]collection.Behavior[T], error) {
	requested := make(map[string]struct{}, len(names))
	out := make([]collection.Behavior[T], 0, len(names))
	for _, name := range names {
		if _, ok := requested[name]; ok {
			return nil, fmt.Errorf("engine: behavior %s listed twice", name)
		}
		b, ok := r.behaviors[name]
		if !ok {
			return nil, fmt.Errorf("engine: unknown behavior %s", name)
		}
		requested[name] = struct{}{}
		out = append(out, b)
	}
	for _, b := range out {
		for _, dep := range b.Dependencies {
			if _, ok := requested[dep]; !ok {
				return nil, fmt.Errorf("engine: behavior %s requires %s", b.Name, dep)
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// tableEntry records which behavior claimed an action key.
type tableEntry[T any] struct {
	behavior string
	handler  collection.Handler[T]
}

// buildDispatchTable merges the behaviors' handlers into one table. A second
// behavior claiming an already-registered action key is a configuration
// error; handlers are never silently overwritten or layered implicitly.
func buildDispatchTable[T any](behaviors []collection.Behavior[T]) (map[collection.ActionType]tableEntry[T], error) {
	table := make(map[collection.ActionType]tableEntry[T])
	for _, b := range behaviors {
		for actionType, handler := range b.Handlers {
			if prev, ok := table[actionType]; ok {
				return nil, fmt.Errorf("engine: action %s claimed by both %s and %s", actionType, prev.behavior, b.Name)
			}
			table[actionType] = tableEntry[T]{behavior: b.Name, handler: handler}
		}
	}
	return table, nil
}
