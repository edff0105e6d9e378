package concurrency

import (
	"errors"
	"fmt"
)

var (
	// ErrRejected is returned when a pool is saturated: the queue is full and
	// the worker count is at its maximum (backpressure)
	ErrRejected = errors.New("task rejected: pool saturated")

	// ErrClosed is returned when submitting after Close.
	// It wraps ErrRejected so callers that do not distinguish can test for rejection only.
	ErrClosed = fmt.Errorf("%w: executor is closed", ErrRejected)

	// ErrNotInitialized is returned when submitting before Initialize
	ErrNotInitialized = fmt.Errorf("%w: executor is not initialized", ErrRejected)

	// ErrAlreadyInitialized is returned by Initialize once the group left the Uninitialized state
	ErrAlreadyInitialized = errors.New("executor group already initialized")

	// ErrNilTask is returned when submitting a nil task
	ErrNilTask = errors.New("task cannot be nil")
)

// ConfigError reports an invalid explicit GroupConfig passed to Initialize.
// Values produced by Resolve never trigger it.
type ConfigError struct {
	Field  string
	Value  int
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid executor config: %s=%d: %s", e.Field, e.Value, e.Reason)
}
