package pool

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
)

// Bounded executes each unit of work on its own goroutine while capping
// how many run at once with a weighted semaphore. Unlike Pool it has no
// queue: work beyond the cap is refused immediately.
type Bounded struct {
	sem    *semaphore.Weighted
	closed atomic.Bool
	wg     sync.WaitGroup
}

// NewBounded creates a bounded spawner allowing at most n concurrent
// units. n <= 0 is treated as 1.
func NewBounded(n int) *Bounded {
	if n <= 0 {
		n = 1
	}
	return &Bounded{sem: semaphore.NewWeighted(int64(n))}
}

// TryExecute runs fn on a new goroutine if a concurrency slot is free.
func (b *Bounded) TryExecute(fn func()) error {
	if fn == nil {
		return nil
	}
	if b.closed.Load() {
		return ErrClosed
	}
	if !b.sem.TryAcquire(1) {
		return ErrFull
	}
	b.wg.Add(1)
	go func() {
		defer func() {
			b.sem.Release(1)
			b.wg.Done()
		}()
		fn()
	}()
	return nil
}

// Close refuses further work and waits for in-flight units to finish.
// Close is idempotent.
func (b *Bounded) Close() {
	if b.closed.Swap(true) {
		return
	}
	b.wg.Wait()
}
