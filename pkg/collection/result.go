package collection

// Result carries the outcome of an adapter call as an explicit discriminated
// value. Adapters report failures through the result rather than panicking so
// the engine can branch on the discriminant and never relies on exceptions
// for control flow.
type Result[T any] struct {
	value T
	err   error
}

// Ok wraps a successful value.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Fail wraps a failure. A nil error is normalized to ErrUnspecified so a
// failed result can never masquerade as success.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = ErrUnspecified
	}
	return Result[T]{err: err}
}

// Ok reports whether the result holds a value.
func (r Result[T]) Ok() bool {
	return r.err == nil
}

// Value returns the wrapped value. It is the zero value for failed results.
func (r Result[T]) Value() T {
	return r.value
}

// Err returns the wrapped error, nil on success.
func (r Result[T]) Err() error {
	return r.err
}

// Unit is the value type of results that carry no payload, e.g. deletes.
type Unit struct{}
