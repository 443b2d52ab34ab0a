package await

import (
	"context"
	"sync"
	"time"
)

type taskState uint8

const (
	statePending taskState = iota
	stateCompleted
	stateErrored
)

func (s taskState) String() string {
	switch s {
	case statePending:
		return "pending"
	case stateCompleted:
		return "completed"
	case stateErrored:
		return "errored"
	default:
		return "unknown"
	}
}

type observerPair[T any] struct {
	onValue func(T)
	onError func(error)
}

// Task is the eventual outcome of one computation: a cancelable,
// single-assignment future.
//
// The outcome (value or error) is set at most once and never changes
// afterwards. Cancellation is an orthogonal flag, not a replacement
// outcome: a canceled task may still be completed internally by an
// in-flight source, but nobody observes that completion. The driver that
// created a Task is the only writer of its outcome; external holders only
// read, wait, and cancel.
type Task[T any] struct {
	mu         sync.Mutex
	state      taskState
	value      T
	err        error
	canceled   bool
	doneClosed bool
	awaitingOn Cancelable
	observers  []observerPair[T]
	waiters    int
	obs        Observer

	done chan struct{}
}

func newTask[T any](obs Observer) *Task[T] {
	return &Task[T]{done: make(chan struct{}), obs: obs}
}

// CompletedWith returns an already-completed task holding v.
func CompletedWith[T any](v T) *Task[T] {
	t := newTask[T](nil)
	t.state = stateCompleted
	t.value = v
	t.doneClosed = true
	close(t.done)
	return t
}

// ErroredWith returns an already-errored task holding err.
func ErroredWith[T any](err error) *Task[T] {
	t := newTask[T](nil)
	t.state = stateErrored
	t.err = err
	t.doneClosed = true
	close(t.done)
	return t
}

// Done returns a channel closed once the task has an outcome or has been
// canceled.
func (t *Task[T]) Done() <-chan struct{} { return t.done }

// IsCanceled reports whether Cancel has been called.
func (t *Task[T]) IsCanceled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.canceled
}

// Cancel marks the task canceled, propagates cancellation into whatever
// the task is currently awaiting, and drops registered observers so that a
// completion signal arriving afterwards notifies nobody. Cancel is
// idempotent and never sets the outcome.
func (t *Task[T]) Cancel() {
	t.mu.Lock()
	if t.canceled {
		t.mu.Unlock()
		return
	}
	t.canceled = true
	src := t.awaitingOn
	t.awaitingOn = nil
	t.observers = nil
	t.signalDoneLocked()
	obs := t.obs
	t.mu.Unlock()

	if src != nil {
		src.Cancel()
	}
	if obs != nil {
		obs.TaskCanceled()
	}
}

// WhenComplete registers a completion/error observer pair. If the outcome
// is already set, the matching callback is invoked synchronously before
// WhenComplete returns. Each registration is delivered at most once, in
// registration order. Registrations on a canceled task are dropped.
// Either callback may be nil.
func (t *Task[T]) WhenComplete(onValue func(T), onError func(error)) {
	t.mu.Lock()
	if t.canceled {
		t.mu.Unlock()
		return
	}
	switch t.state {
	case statePending:
		t.observers = append(t.observers, observerPair[T]{onValue: onValue, onError: onError})
		t.mu.Unlock()
		return
	case stateCompleted:
		v := t.value
		t.mu.Unlock()
		if onValue != nil {
			onValue(v)
		}
	case stateErrored:
		err := t.err
		t.mu.Unlock()
		if onError != nil {
			onError(err)
		}
	}
}

// Wait blocks until the task has an outcome, then returns it. It fails
// with ErrCanceled if the task is already canceled when called.
func (t *Task[T]) Wait() (T, error) {
	var zero T
	if err := t.beginWait(); err != nil {
		return zero, err
	}
	<-t.done
	return t.endWait()
}

// WaitTimeout is Wait with a deadline. On expiry it fails with ErrTimeout
// without touching the task's state; the task may still complete later and
// a subsequent wait will observe that outcome.
func (t *Task[T]) WaitTimeout(d time.Duration) (T, error) {
	var zero T
	if err := t.beginWait(); err != nil {
		return zero, err
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-t.done:
		return t.endWait()
	case <-timer.C:
		t.mu.Lock()
		t.waiters--
		t.mu.Unlock()
		return zero, ErrTimeout
	}
}

// Await blocks until the task has an outcome or ctx is done. If ctx wins,
// it returns ctx.Err().
func (t *Task[T]) Await(ctx context.Context) (T, error) {
	var zero T
	if err := t.beginWait(); err != nil {
		return zero, err
	}
	select {
	case <-t.done:
		return t.endWait()
	case <-ctx.Done():
		t.mu.Lock()
		t.waiters--
		t.mu.Unlock()
		return zero, ctx.Err()
	}
}

// TryGet returns the outcome if one is already set; ok is false otherwise.
func (t *Task[T]) TryGet() (v T, err error, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	switch t.state {
	case stateCompleted:
		return t.value, nil, true
	case stateErrored:
		var zero T
		return zero, t.err, true
	default:
		var zero T
		return zero, nil, false
	}
}

func (t *Task[T]) beginWait() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.canceled {
		return ErrCanceled
	}
	t.waiters++
	return nil
}

func (t *Task[T]) endWait() (T, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.waiters--
	switch t.state {
	case stateCompleted:
		return t.value, nil
	case stateErrored:
		var zero T
		return zero, t.err
	default:
		// Woken by cancellation; no outcome will be delivered to us.
		var zero T
		return zero, ErrCanceled
	}
}

// complete sets the outcome to v exactly once and notifies registered
// observers. Later calls are no-ops. Only the owning driver calls this.
func (t *Task[T]) complete(v T) {
	t.mu.Lock()
	if t.state != statePending {
		t.mu.Unlock()
		return
	}
	t.state = stateCompleted
	t.value = v
	observers := t.observers
	t.observers = nil
	t.signalDoneLocked()
	t.mu.Unlock()

	// Delivery happens outside the lock so observers may re-enter the task.
	for _, o := range observers {
		if o.onValue != nil {
			o.onValue(v)
		}
	}
}

// fail sets the outcome to err exactly once and notifies registered
// observers. The return value reports whether anyone was listening (an
// error observer, or a blocked waiter) at the time of the call; the driver
// uses it to decide whether the error must be escalated.
func (t *Task[T]) fail(err error) bool {
	t.mu.Lock()
	if t.state != statePending {
		t.mu.Unlock()
		return false
	}
	t.state = stateErrored
	t.err = err
	observers := t.observers
	t.observers = nil
	observed := t.waiters > 0
	for _, o := range observers {
		if o.onError != nil {
			observed = true
		}
	}
	t.signalDoneLocked()
	t.mu.Unlock()

	for _, o := range observers {
		if o.onError != nil {
			o.onError(err)
		}
	}
	return observed
}

// setAwaitingOn records the source the driver is suspended on. It fails
// with ErrCanceled when the task was canceled in the window between the
// driver's cancellation check and the registration.
func (t *Task[T]) setAwaitingOn(src Cancelable) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.canceled {
		return ErrCanceled
	}
	t.awaitingOn = src
	return nil
}

func (t *Task[T]) clearAwaitingOn() {
	t.mu.Lock()
	t.awaitingOn = nil
	t.mu.Unlock()
}

func (t *Task[T]) terminal() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state != statePending
}

func (t *Task[T]) signalDoneLocked() {
	if !t.doneClosed {
		t.doneClosed = true
		close(t.done)
	}
}
