package retry

import (
	"errors"
	"testing"
	"time"

	"awaitkit/await"
)

func TestFixedNextDelay(t *testing.T) {
	s := Fixed{Delay: 10 * time.Millisecond, Attempts: 2}
	if d, ok := s.NextDelay(0); !ok || d != 10*time.Millisecond {
		t.Fatalf("attempt 0: (%v, %v)", d, ok)
	}
	if _, ok := s.NextDelay(2); ok {
		t.Fatal("attempt 2 must be refused")
	}
}

func TestExponentialCapsAtMaxDelay(t *testing.T) {
	s := Exponential{
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     25 * time.Millisecond,
		Multiplier:   2,
		Attempts:     5,
	}
	d0, _ := s.NextDelay(0)
	d3, _ := s.NextDelay(3)
	if d0 != 10*time.Millisecond {
		t.Fatalf("attempt 0 delay: %v", d0)
	}
	if d3 != 25*time.Millisecond {
		t.Fatalf("attempt 3 must be capped, got %v", d3)
	}
	if _, ok := s.NextDelay(5); ok {
		t.Fatal("attempt 5 must be refused")
	}
}

func TestDoReissuesFreshComputations(t *testing.T) {
	boom := errors.New("flaky")
	attempts := 0
	v, err := Do(Fixed{Delay: time.Millisecond, Attempts: 5}, func() (*await.Task[int], error) {
		attempts++
		if attempts < 3 {
			return await.ErroredWith[int](boom), nil
		}
		return await.CompletedWith(7), nil
	})
	if err != nil || v != 7 {
		t.Fatalf("got (%d, %v)", v, err)
	}
	if attempts != 3 {
		t.Fatalf("expected 3 attempts, got %d", attempts)
	}
}

func TestDoGivesUpWithLastError(t *testing.T) {
	boom := errors.New("always")
	attempts := 0
	_, err := Do(Fixed{Delay: time.Millisecond, Attempts: 2}, func() (*await.Task[int], error) {
		attempts++
		return await.ErroredWith[int](boom), nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected last error, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("expected initial attempt plus 2 retries, got %d", attempts)
	}
}
