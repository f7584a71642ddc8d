package collection

import (
	"errors"
	"reflect"
)

// Comparators supply the identity, equality and copy hooks the engine needs
// to manage an otherwise opaque item type. GetID is mandatory; the engine
// never probes item fields itself.
type Comparators[T any] struct {
	// GetID extracts the unique identity of an item.
	GetID func(T) string
	// Equal reports deep value equality. Defaults to reflect.DeepEqual.
	Equal func(T, T) bool
	// Clone deep-copies an item. When nil a plain value copy is used, which
	// is only safe for items without shared pointer or slice fields.
	Clone func(T) T
	// GetContext extracts the owning context key of an item, when items carry
	// one. Optional; used by hosts filtering mixed feeds before dispatch.
	GetContext func(T) (string, bool)
}

// Validate checks that the mandatory hooks are present.
func (c Comparators[T]) Validate() error {
	if c.GetID == nil {
		return errors.New("collection: comparators require a GetID func")
	}
	return nil
}

// ItemsEqual reports deep value equality via the configured hook, falling
// back to reflect.DeepEqual.
func (c Comparators[T]) ItemsEqual(a, b T) bool {
	if c.Equal != nil {
		return c.Equal(a, b)
	}
	return reflect.DeepEqual(a, b)
}

// CloneItem copies a single item using the configured Clone hook.
func (c Comparators[T]) CloneItem(item T) T {
	if c.Clone != nil {
		return c.Clone(item)
	}
	return item
}

// CloneItems copies an item sequence, preserving order. Nil stays nil so
// cloned states compare equal to their source.
func (c Comparators[T]) CloneItems(items []T) []T {
	if items == nil {
		return nil
	}
	out := make([]T, len(items))
	for i, item := range items {
		out[i] = c.CloneItem(item)
	}
	return out
}

// IndexOf locates an item by id within a sequence, -1 when absent.
func (c Comparators[T]) IndexOf(items []T, id string) int {
	for i, item := range items {
		if c.GetID(item) == id {
			return i
		}
	}
	return -1
}

// Transforms project items to and from the wire shapes an adapter expects.
// Nil hooks are filled by Config.Normalized with plain JSON marshaling of
// the whole item, which suits adapters whose payload shape matches the item
// shape.
type Transforms[T any] struct {
	// ForCreate projects a draft item down to the adapter's create payload.
	ForCreate func(T) (Payload, error)
	// ForUpdate projects a modified item down to the adapter's update payload.
	ForUpdate func(T) (Payload, error)
	// FromAPI projects a raw adapter record up to the internal item shape.
	FromAPI func(Payload) (T, error)
}

func (t Transforms[T]) normalized() Transforms[T] {
	if t.ForCreate == nil {
		t.ForCreate = func(item T) (Payload, error) { return NewPayloadFromValue(item) }
	}
	if t.ForUpdate == nil {
		t.ForUpdate = func(item T) (Payload, error) { return NewPayloadFromValue(item) }
	}
	if t.FromAPI == nil {
		t.FromAPI = func(payload Payload) (T, error) {
			out, ok := DecodePayload[T](payload)
			if !ok {
				var zero T
				return zero, errors.New("collection: cannot decode api record")
			}
			return out, nil
		}
	}
	return t
}
