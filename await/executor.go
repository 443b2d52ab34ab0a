package await

// Executor is the port for running worker-pool work submitted by
// AwaitFunc. It keeps the driver independent from how plain functions are
// executed (goroutine, bounded pool, queue).
type Executor interface {
	// TryExecute schedules fn to run asynchronously. It returns a non-nil
	// error if the work cannot be accepted.
	TryExecute(fn func()) error
}

// GoExecutor executes work by spawning a goroutine. It is the default
// Executor of a driver.
type GoExecutor struct{}

func (GoExecutor) TryExecute(fn func()) error {
	go fn()
	return nil
}
