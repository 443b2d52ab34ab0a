package await

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrCanceled indicates the task was canceled before or while waiting.
	ErrCanceled = errors.New("awaitkit: task canceled")

	// ErrTimeout indicates a timed blocking wait elapsed with no outcome.
	ErrTimeout = errors.New("awaitkit: wait timed out")

	// ErrConcurrentAwait indicates a second await was issued while one was
	// already outstanding on the same driver. This is a usage bug in the
	// computation, not a runtime condition.
	ErrConcurrentAwait = errors.New("awaitkit: concurrent await on one driver")

	// ErrAlreadyStarted indicates Start was called twice on a driver.
	ErrAlreadyStarted = errors.New("awaitkit: driver already started")
)

// PanicError wraps a panic recovered from a resumed computation segment or
// a worker-pool function.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("awaitkit: panic: %v", e.Value)
}

// cancellationNoise reports whether err arises purely from cancellation and
// should be suppressed rather than escalated when the task was canceled.
func cancellationNoise(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, context.Canceled)
}
