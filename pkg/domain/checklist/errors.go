package checklist

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an update names a key absent from the store.
var ErrNotFound = errors.New("checklist item not found")

// DuplicateKeyError is returned when Add is called with a (source, target)
// pair that already exists.
type DuplicateKeyError struct {
	Key Key
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate checklist key: %s", e.Key)
}

// TransitionError is returned when a status update violates the monotonic
// transition rules.
type TransitionError struct {
	Key  Key
	From Status
	To   Status
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition for %s: %s -> %s", e.Key, e.From, e.To)
}
