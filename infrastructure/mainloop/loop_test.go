package mainloop

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestActionsRunInSubmissionOrder(t *testing.T) {
	l := New()
	defer l.Stop()

	var mu sync.Mutex
	var order []int
	done := make(chan struct{})
	for i := 0; i < 5; i++ {
		i := i
		l.RunOn(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			if i == 4 {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("actions never drained")
	}
	mu.Lock()
	defer mu.Unlock()
	for i, v := range order {
		if v != i {
			t.Fatalf("out of order: %v", order)
		}
	}
}

func TestIsCurrentInsideAction(t *testing.T) {
	l := New()
	defer l.Stop()

	res := make(chan bool, 1)
	l.RunOn(func() { res <- l.IsCurrent() })
	if !<-res {
		t.Fatal("IsCurrent must hold on the loop goroutine")
	}
	if l.IsCurrent() {
		t.Fatal("IsCurrent must not hold off the loop goroutine")
	}
}

func TestReentrantRunOnExecutesImmediately(t *testing.T) {
	l := New()
	defer l.Stop()

	order := make(chan string, 2)
	done := make(chan struct{})
	l.RunOn(func() {
		l.RunOn(func() { order <- "inner" })
		order <- "outer"
		close(done)
	})

	<-done
	if first := <-order; first != "inner" {
		t.Fatalf("a reentrant action must run immediately, first was %q", first)
	}
}

func TestRunOnNeverBlocksSubmitter(t *testing.T) {
	l := New()

	gate := make(chan struct{})
	running := make(chan struct{})
	l.RunOn(func() { close(running); <-gate })
	<-running

	// Pile work behind the blocked loop; submission must stay
	// non-blocking no matter how deep the backlog gets.
	var ran atomic.Int64
	submitted := make(chan struct{})
	go func() {
		for i := 0; i < 256; i++ {
			l.RunOn(func() { ran.Add(1) })
		}
		close(submitted)
	}()
	select {
	case <-submitted:
	case <-time.After(time.Second):
		t.Fatal("RunOn blocked while the loop was busy")
	}

	close(gate)
	l.Stop()
	if got := ran.Load(); got != 256 {
		t.Fatalf("expected all queued actions to drain, got %d of 256", got)
	}
}

func TestStopDrainsAndIsIdempotent(t *testing.T) {
	l := New()
	ran := make(chan struct{}, 1)
	l.RunOn(func() { ran <- struct{}{} })
	l.Stop()
	l.Stop()

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("queued action was not drained before Stop returned")
	}

	// Submissions after Stop are dropped, not executed.
	l.RunOn(func() { t.Error("action ran after Stop") })
	time.Sleep(20 * time.Millisecond)
}
