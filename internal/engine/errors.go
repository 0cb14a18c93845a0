package engine

import (
	"errors"
	"fmt"
)

// Sentinel errors for task engine operations.
var (
	ErrTitleRequired   = errors.New("task title is required")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrTaskNotFound    = errors.New("task not found")
	ErrMutationPending = errors.New("another change to this task is still in flight")
	ErrAuthRequired    = errors.New("authentication required")
)

// RemoteError reports a gateway call that was attempted and failed.
// The in-memory collection is left in its pre-call state.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote %s failed: %v", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error { return e.Err }

// remoteErr wraps a gateway failure, passing ErrAuthRequired through
// untouched so callers can distinguish credential problems from
// transport problems.
func remoteErr(op string, err error) error {
	if errors.Is(err, ErrAuthRequired) {
		return err
	}
	return &RemoteError{Op: op, Err: err}
}
