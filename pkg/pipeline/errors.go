package pipeline

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by Store.Load when no snapshot exists for a
// workflow id.
var ErrNotFound = errors.New("workflow not found")

// InputError rejects a run before any stage executes (bad workflow id,
// unknown entry stage, malformed input).
type InputError struct {
	Msg string
}

func (e *InputError) Error() string {
	return "invalid input: " + e.Msg
}

// NewInputError builds an InputError with a formatted message.
func NewInputError(format string, args ...any) error {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}

// IsInputError reports whether err is an InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// PersistenceError aborts the current invocation without marking the
// workflow completed. The last successfully persisted snapshot stays valid,
// so a later call can resume from it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("state store %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsPersistenceError reports whether err is a PersistenceError.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
