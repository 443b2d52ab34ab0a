package await

import (
	"sync"
	"sync/atomic"
)

// Cancelable is the minimal capability implemented by anything that can be
// told to stop. Any source the driver awaits must expose, or be adapted
// to, this capability so cancellation can be propagated into it.
type Cancelable interface {
	Cancel()
	IsCanceled() bool
}

// Canceler is a basic Cancelable: an idempotent flag plus an optional hook
// invoked on the first Cancel. Useful when adapting external sources.
type Canceler struct {
	canceled atomic.Bool
	onCancel func()
}

// NewCanceler returns a Canceler that runs onCancel on the first Cancel.
// onCancel may be nil.
func NewCanceler(onCancel func()) *Canceler {
	return &Canceler{onCancel: onCancel}
}

// Cancel marks the canceler and runs the hook exactly once.
func (c *Canceler) Cancel() {
	if c.canceled.Swap(true) {
		return
	}
	if c.onCancel != nil {
		c.onCancel()
	}
}

// IsCanceled reports whether Cancel has been called.
func (c *Canceler) IsCanceled() bool { return c.canceled.Load() }

// singleSubscription is the Cancelable a push-single await registers in
// the task's awaitingOn slot before calling Subscribe. The disposer is
// attached once Subscribe returns; if cancellation won the race in the
// meantime, attach disposes it immediately.
type singleSubscription struct {
	mu       sync.Mutex
	disp     Disposer
	canceled bool
}

func (s *singleSubscription) Cancel() {
	s.mu.Lock()
	if s.canceled {
		s.mu.Unlock()
		return
	}
	s.canceled = true
	disp := s.disp
	s.mu.Unlock()
	if disp != nil {
		disp.Dispose()
	}
}

func (s *singleSubscription) IsCanceled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canceled
}

func (s *singleSubscription) attach(disp Disposer) {
	if disp == nil {
		return
	}
	s.mu.Lock()
	s.disp = disp
	canceled := s.canceled
	s.mu.Unlock()
	if canceled {
		disp.Dispose()
	}
}
