package await

import (
	"sync"
	"time"
)

// Call is a single-callback-completion external call, in the shape of an
// enqueue-style networking client: exactly one of onSuccess/onFailure
// fires when the call settles. The call's own cancel hook doubles as the
// Cancelable stored in the task's awaitingOn slot while suspended.
type Call[R any] interface {
	Enqueue(onSuccess func(R), onFailure func(error))
	Cancelable
}

// Disposer detaches a push-single subscription.
type Disposer interface {
	Dispose()
	IsDisposed() bool
}

// Single is a single-value push source: Subscribe registers callbacks and
// returns a Disposer that detaches them.
type Single[R any] interface {
	Subscribe(onValue func(R), onError func(error)) Disposer
}

// Runner marshals an action onto a designated goroutine (an "affinity
// thread", such as a UI loop). Implementations run the action immediately
// when already on the target, and enqueue it asynchronously otherwise.
type Runner interface {
	RunOn(action func())
}

// timerSingle is a Single that emits the fire time once, after a delay.
type timerSingle struct {
	d time.Duration
}

// Elapsed returns a Single that emits the current time once d has passed.
// Disposing the subscription stops the underlying timer.
func Elapsed(d time.Duration) Single[time.Time] {
	return timerSingle{d: d}
}

func (s timerSingle) Subscribe(onValue func(time.Time), onError func(error)) Disposer {
	td := &timerDisposer{}
	td.timer = time.AfterFunc(s.d, func() {
		if td.disarm() {
			onValue(time.Now())
		}
	})
	return td
}

type timerDisposer struct {
	mu       sync.Mutex
	timer    *time.Timer
	disposed bool
	fired    bool
}

func (d *timerDisposer) disarm() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.disposed || d.fired {
		return false
	}
	d.fired = true
	return true
}

func (d *timerDisposer) Dispose() {
	d.mu.Lock()
	if d.disposed {
		d.mu.Unlock()
		return
	}
	d.disposed = true
	timer := d.timer
	d.mu.Unlock()
	if timer != nil {
		timer.Stop()
	}
}

func (d *timerDisposer) IsDisposed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.disposed
}
