// Package pool provides worker-pool executors for driving await.AwaitFunc
// work: a fixed-worker pool with a bounded queue, and a semaphore-bounded
// spawner. Both implement the await.Executor port.
package pool

import (
	"errors"
	"sync"
)

var (
	// ErrClosed is returned when submitting to a closed executor.
	ErrClosed = errors.New("awaitkit: pool closed")
	// ErrFull is returned when the queue or concurrency budget is exhausted.
	ErrFull = errors.New("awaitkit: pool full")
)

// Pool is a bounded worker-pool executor: a fixed number of workers
// consuming a bounded queue. Every unit TryExecute accepts is guaranteed
// to run: a suspended computation whose dispatch was accepted must
// eventually be resumed, so Close drains the queue instead of abandoning
// it.
type Pool struct {
	mu     sync.RWMutex
	tasks  chan func()
	closed bool
	wg     sync.WaitGroup
}

// New creates a pool with the given number of workers and queue capacity.
// workers <= 0 is treated as 1; queueCapacity < 0 as 0.
func New(workers int, queueCapacity int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueCapacity < 0 {
		queueCapacity = 0
	}

	p := &Pool{tasks: make(chan func(), queueCapacity)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for fn := range p.tasks {
		if fn != nil {
			fn()
		}
	}
}

// TryExecute attempts to enqueue work without blocking.
func (p *Pool) TryExecute(fn func()) error {
	if fn == nil {
		return nil
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}
	select {
	case p.tasks <- fn:
		return nil
	default:
		return ErrFull
	}
}

// Close stops accepting new work, runs everything already accepted, and
// waits for the workers to exit. Close is idempotent.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.wg.Wait()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()
	p.wg.Wait()
}
