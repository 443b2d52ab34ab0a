// Package mainloop provides a single-goroutine serial runner, the Go
// analogue of a UI thread. It satisfies the await.Runner capability:
// actions submitted from the loop goroutine run immediately, actions
// submitted from anywhere else are marshaled onto the loop.
package mainloop

import (
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// Loop owns one goroutine and executes submitted actions on it, one at a
// time, in submission order. The queue is unbounded; RunOn never blocks
// the submitter.
type Loop struct {
	gid uint64

	mu     sync.Mutex
	queue  []func()
	closed bool

	wake    chan struct{}
	stopped chan struct{}
}

// New starts a loop. The caller owns its lifecycle and must Stop it.
func New() *Loop {
	l := &Loop{
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	ready := make(chan struct{})
	go func() {
		l.gid = goroutineID()
		close(ready)
		defer close(l.stopped)
		l.run()
	}()
	<-ready
	return l
}

func (l *Loop) run() {
	for {
		l.mu.Lock()
		for len(l.queue) == 0 {
			if l.closed {
				l.mu.Unlock()
				return
			}
			l.mu.Unlock()
			<-l.wake
			l.mu.Lock()
		}
		batch := l.queue
		l.queue = nil
		l.mu.Unlock()

		for _, action := range batch {
			action()
		}
	}
}

// RunOn executes action on the loop goroutine: immediately when already on
// it, otherwise enqueued asynchronously. Actions submitted after Stop are
// dropped.
func (l *Loop) RunOn(action func()) {
	if action == nil {
		return
	}
	if l.IsCurrent() {
		action()
		return
	}
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, action)
	l.mu.Unlock()
	l.signal()
}

// IsCurrent reports whether the caller is running on the loop goroutine.
func (l *Loop) IsCurrent() bool {
	return goroutineID() == l.gid
}

// Stop drains pending actions and waits for the loop goroutine to exit.
// Stop is idempotent. It must not be called from the loop itself.
func (l *Loop) Stop() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		<-l.stopped
		return
	}
	l.closed = true
	l.mu.Unlock()
	l.signal()
	<-l.stopped
}

// signal nudges the loop goroutine. The channel holds one pending nudge;
// the loop re-reads the queue after each wakeup, so collapsing nudges is
// safe.
func (l *Loop) signal() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// goroutineID parses the current goroutine's id out of the runtime stack
// header ("goroutine N [running]:"). There is no supported API for this;
// the header format has been stable across releases.
func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	s := strings.TrimPrefix(string(buf[:n]), "goroutine ")
	if i := strings.IndexByte(s, ' '); i > 0 {
		if id, err := strconv.ParseUint(s[:i], 10, 64); err == nil {
			return id
		}
	}
	return 0
}
