package collection

import (
	"errors"
	"fmt"
)

// ErrUnspecified backs failed results constructed without an error.
var ErrUnspecified = errors.New("collection: unspecified failure")

// ErrNoAdapter is returned by load/save when the manager was configured
// without an API adapter.
var ErrNoAdapter = errors.New("collection: no api adapter configured")

// ErrNotFound reports an operation targeting an id absent from the
// collection. The engine surfaces it only in strict mode; the default policy
// treats missing targets as no-ops.
type ErrNotFound struct {
	Entity string
	ID     string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ErrUnknownAction reports a dispatch-table miss. The engine logs and ignores
// unknown actions unless strict mode is enabled.
type ErrUnknownAction struct {
	ActionType ActionType
}

func (e ErrUnknownAction) Error() string {
	return fmt.Sprintf("no handler registered for action %s", e.ActionType)
}
