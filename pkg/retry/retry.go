// Package retry provides caller-side retry strategies for await
// computations. The core never retries on its own; callers that want
// retries re-issue a fresh computation per attempt, which is exactly what
// Do does.
package retry

import (
	"math"
	"math/rand"
	"time"

	"awaitkit/await"
)

// Strategy decides whether and when to retry.
type Strategy interface {
	// NextDelay returns the delay before the next attempt and whether a
	// retry should happen at all. attempt counts failed attempts,
	// starting at 0 after the first failure.
	NextDelay(attempt int) (time.Duration, bool)
}

// Fixed retries up to Attempts times with a constant delay.
type Fixed struct {
	Delay    time.Duration
	Attempts int
}

func (s Fixed) NextDelay(attempt int) (time.Duration, bool) {
	if attempt >= s.Attempts {
		return 0, false
	}
	return s.Delay, true
}

// Exponential retries with exponential backoff and optional jitter.
type Exponential struct {
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	Attempts     int
	Jitter       bool
}

func (s Exponential) NextDelay(attempt int) (time.Duration, bool) {
	if attempt >= s.Attempts {
		return 0, false
	}
	delay := float64(s.InitialDelay) * math.Pow(s.Multiplier, float64(attempt))
	if delay > float64(s.MaxDelay) {
		delay = float64(s.MaxDelay)
	}
	if s.Jitter {
		delay += delay * 0.25 * rand.Float64()
	}
	return time.Duration(delay), true
}

// Do starts the computation issue produces, waits for its outcome, and
// re-issues a fresh computation per failed attempt according to strategy.
// It returns the first successful value, or the last error once the
// strategy gives up.
func Do[T any](strategy Strategy, issue func() (*await.Task[T], error)) (T, error) {
	var zero T
	attempt := 0
	for {
		task, err := issue()
		if err == nil {
			var v T
			if v, err = task.Wait(); err == nil {
				return v, nil
			}
		}
		delay, ok := strategy.NextDelay(attempt)
		if !ok {
			return zero, err
		}
		time.Sleep(delay)
		attempt++
	}
}
