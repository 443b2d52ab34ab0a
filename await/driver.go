package await

import (
	"errors"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

type outcomeKind uint8

const (
	outcomeSuspended outcomeKind = iota
	outcomeDone
	outcomeFailed
)

// Outcome is the result of one computation segment: either the
// computation's terminal value or error, or a marker that the segment
// suspended on a source. Construct one with Driver.Resolve, Driver.Reject,
// or by returning the result of an Await call.
type Outcome[T any] struct {
	kind  outcomeKind
	value T
	err   error
}

// Computation is one synchronous segment of an async computation. It runs
// ordinary code and either finishes the computation or suspends on exactly
// one source, naming the continuation inline.
type Computation[T any] func(d *Driver[T]) Outcome[T]

// Driver runs one computation to completion, bridging each awaited
// source's native completion signal into resumption of the remaining
// segments, and publishes the terminal outcome into the Task it owns.
//
// A Driver is single-shot and transient: it exists to drive exactly one
// computation, and it supports at most one outstanding await at a time.
type Driver[T any] struct {
	task *Task[T]
	cfg  config

	started   atomic.Bool
	awaiting  atomic.Bool
	suspended atomic.Bool
	awaitKind atomic.Uint32

	startTime time.Time
}

// NewDriver creates a driver with its owned, still-pending task.
func NewDriver[T any](opts ...Option) *Driver[T] {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	d := &Driver[T]{cfg: cfg}
	d.task = newTask[T](cfg.observer)
	return d
}

// Task returns the driver's owned task. It is the same task Start returns.
func (d *Driver[T]) Task() *Task[T] { return d.task }

// Start begins executing body synchronously on the calling goroutine and
// returns the owned task once the computation reaches its first suspension
// point or finishes.
//
// An error produced before the first suspension point is returned by Start
// itself, on the caller's stack, and never enters the task's error
// channel. A panic in that synchronous prefix likewise unwinds the
// caller's stack.
func (d *Driver[T]) Start(body Computation[T]) (*Task[T], error) {
	if d.started.Swap(true) {
		return nil, ErrAlreadyStarted
	}
	d.startTime = time.Now()
	if obs := d.cfg.observer; obs != nil {
		obs.TaskStarted()
	}

	switch out := body(d); out.kind {
	case outcomeDone:
		d.task.complete(out.value)
		if obs := d.cfg.observer; obs != nil {
			obs.TaskCompleted(time.Since(d.startTime))
		}
		return d.task, nil
	case outcomeFailed:
		if !d.suspended.Load() {
			return nil, out.err
		}
		d.publishFailure(out.err)
		return d.task, nil
	default:
		return d.task, nil
	}
}

// Start creates a driver and runs body on it. It is shorthand for
// NewDriver followed by Driver.Start.
func Start[T any](body Computation[T], opts ...Option) (*Task[T], error) {
	return NewDriver[T](opts...).Start(body)
}

// StartOn is Start with affinity: every resumption after a suspension is
// marshaled onto runner before the remainder of the computation executes.
// The synchronous prefix still runs on the caller.
func StartOn[T any](body Computation[T], runner Runner, opts ...Option) (*Task[T], error) {
	return NewDriver[T](append(opts, WithAffinity(runner))...).Start(body)
}

// Resolve finishes the computation with v.
func (d *Driver[T]) Resolve(v T) Outcome[T] {
	return Outcome[T]{kind: outcomeDone, value: v}
}

// Reject finishes the computation with err.
func (d *Driver[T]) Reject(err error) Outcome[T] {
	return Outcome[T]{kind: outcomeFailed, err: err}
}

func suspend[T any]() Outcome[T] {
	return Outcome[T]{kind: outcomeSuspended}
}

// beginAwait claims the driver's single outstanding-wait slot and records
// the source being awaited. src may be nil when the source has no
// cancelable at all (worker-pool dispatch).
func (d *Driver[T]) beginAwait(kind SourceKind, src Cancelable) error {
	if !d.awaiting.CompareAndSwap(false, true) {
		return ErrConcurrentAwait
	}
	d.awaitKind.Store(uint32(kind))
	if src != nil {
		if err := d.task.setAwaitingOn(src); err != nil {
			d.awaiting.Store(false)
			return err
		}
	}
	d.suspended.Store(true)
	if obs := d.cfg.observer; obs != nil {
		obs.TaskSuspended(kind)
	}
	return nil
}

// awaitError maps a beginAwait failure onto the computation. Cancellation
// makes the suspension a no-op (the computation never resumes); a protocol
// violation is reported as the computation's failure.
func (d *Driver[T]) awaitError(err error) Outcome[T] {
	if errors.Is(err, ErrCanceled) {
		return suspend[T]()
	}
	return Outcome[T]{kind: outcomeFailed, err: err}
}

// resume is the common path for every source's completion signal. It
// releases the wait slot, drops the resumption if cancellation has been
// observed, routes through the affinity runner when one is configured, and
// settles whatever the continuation produces.
func (d *Driver[T]) resume(k func() Outcome[T]) {
	kind := SourceKind(d.awaitKind.Load())
	d.task.clearAwaitingOn()
	d.awaiting.Store(false)
	if d.task.IsCanceled() {
		return
	}
	run := func() {
		// Re-check on the resumption goroutine: Cancel may have won the
		// race while this action sat in the affinity queue.
		if d.task.IsCanceled() || d.task.terminal() {
			return
		}
		if obs := d.cfg.observer; obs != nil {
			obs.TaskResumed(kind)
		}
		d.settle(d.protect(k))
	}
	if d.cfg.runner != nil {
		d.cfg.runner.RunOn(run)
	} else {
		run()
	}
}

func (d *Driver[T]) protect(k func() Outcome[T]) (out Outcome[T]) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome[T]{kind: outcomeFailed, err: &PanicError{Value: r, Stack: debug.Stack()}}
		}
	}()
	return k()
}

func (d *Driver[T]) settle(out Outcome[T]) {
	switch out.kind {
	case outcomeDone:
		d.task.complete(out.value)
		if obs := d.cfg.observer; obs != nil {
			obs.TaskCompleted(time.Since(d.startTime))
		}
	case outcomeFailed:
		d.publishFailure(out.err)
	}
}

// publishFailure records err as the task's outcome. An error nobody is
// listening for is escalated through the escalation handler, on the
// affinity runner when one is configured, unless the task was canceled and
// the error is mere cancellation noise.
func (d *Driver[T]) publishFailure(err error) {
	observed := d.task.fail(err)
	if obs := d.cfg.observer; obs != nil {
		obs.TaskFailed(time.Since(d.startTime), err)
	}
	if observed {
		return
	}
	if d.task.IsCanceled() && cancellationNoise(err) {
		return
	}
	if obs := d.cfg.observer; obs != nil {
		obs.ErrorEscalated(err)
	}
	if d.cfg.runner != nil {
		d.cfg.runner.RunOn(func() { d.cfg.escalate(err) })
	} else {
		d.cfg.escalate(err)
	}
}

// AwaitTask suspends the computation until src settles, then resumes the
// continuation with src's value or error. Canceling the driver's task
// while suspended propagates into src.
func AwaitTask[T, R any](d *Driver[T], src *Task[R], resume func(R, error) Outcome[T]) Outcome[T] {
	if d.task.IsCanceled() {
		return suspend[T]()
	}
	if src.IsCanceled() {
		// A canceled source delivers nothing; surface it as an error
		// instead of suspending forever.
		return resume(*new(R), ErrCanceled)
	}
	if err := d.beginAwait(SourceTask, src); err != nil {
		return d.awaitError(err)
	}
	var once sync.Once
	src.WhenComplete(
		func(v R) {
			once.Do(func() { d.resume(func() Outcome[T] { return resume(v, nil) }) })
		},
		func(err error) {
			once.Do(func() { d.resume(func() Outcome[T] { var zero R; return resume(zero, err) }) })
		},
	)
	return suspend[T]()
}

// AwaitCall suspends the computation until the enqueue-style call settles.
// The call's own cancel hook is what Cancel propagates into while
// suspended.
func AwaitCall[T, R any](d *Driver[T], call Call[R], resume func(R, error) Outcome[T]) Outcome[T] {
	if d.task.IsCanceled() {
		return suspend[T]()
	}
	if err := d.beginAwait(SourceCall, call); err != nil {
		return d.awaitError(err)
	}
	var once sync.Once
	call.Enqueue(
		func(v R) {
			once.Do(func() { d.resume(func() Outcome[T] { return resume(v, nil) }) })
		},
		func(err error) {
			once.Do(func() { d.resume(func() Outcome[T] { var zero R; return resume(zero, err) }) })
		},
	)
	return suspend[T]()
}

// AwaitSingle suspends the computation until the push source emits its
// value or error. The subscription's disposer is what Cancel propagates
// into while suspended. The awaitingOn slot is claimed before Subscribe,
// so a source that emits re-entrantly (letting the continuation claim the
// slot for a new await) never leaves this subscription in it; the disposer
// is attached to the already-registered subscription once known.
func AwaitSingle[T, R any](d *Driver[T], src Single[R], resume func(R, error) Outcome[T]) Outcome[T] {
	if d.task.IsCanceled() {
		return suspend[T]()
	}
	sub := &singleSubscription{}
	if err := d.beginAwait(SourceSingle, sub); err != nil {
		return d.awaitError(err)
	}
	var once sync.Once
	disp := src.Subscribe(
		func(v R) {
			once.Do(func() { d.resume(func() Outcome[T] { return resume(v, nil) }) })
		},
		func(err error) {
			once.Do(func() { d.resume(func() Outcome[T] { var zero R; return resume(zero, err) }) })
		},
	)
	sub.attach(disp)
	return suspend[T]()
}

// AwaitFunc dispatches fn to the driver's worker pool and suspends the
// computation until fn returns or panics. No awaitingOn cancelable is
// tracked for the dispatch; cancellation is best-effort: a canceled
// dispatch that has not yet started is skipped, and one already running is
// not interrupted, its result is simply dropped.
func AwaitFunc[T, R any](d *Driver[T], fn func() (R, error), resume func(R, error) Outcome[T]) Outcome[T] {
	if d.task.IsCanceled() {
		return suspend[T]()
	}
	if err := d.beginAwait(SourceFunc, nil); err != nil {
		return d.awaitError(err)
	}
	submit := func() {
		if d.task.IsCanceled() {
			d.awaiting.Store(false)
			return
		}
		v, err := runFunc(fn)
		d.resume(func() Outcome[T] { return resume(v, err) })
	}
	if err := d.cfg.pool.TryExecute(submit); err != nil {
		d.awaiting.Store(false)
		return Outcome[T]{kind: outcomeFailed, err: err}
	}
	return suspend[T]()
}

func runFunc[R any](fn func() (R, error)) (v R, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return fn()
}
