package prom

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"awaitkit/await"
)

func TestObserverCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := New(reg)

	obs.TaskStarted()
	obs.TaskSuspended(await.SourceFunc)
	obs.TaskResumed(await.SourceFunc)
	obs.TaskSuspended(await.SourceCall)
	obs.TaskCompleted(5 * time.Millisecond)
	obs.TaskFailed(time.Millisecond, errors.New("boom"))
	obs.TaskCanceled()
	obs.ErrorEscalated(errors.New("boom"))

	if got := testutil.ToFloat64(obs.started); got != 1 {
		t.Fatalf("started = %v", got)
	}
	if got := testutil.ToFloat64(obs.completed); got != 1 {
		t.Fatalf("completed = %v", got)
	}
	if got := testutil.ToFloat64(obs.failed); got != 1 {
		t.Fatalf("failed = %v", got)
	}
	if got := testutil.ToFloat64(obs.canceled); got != 1 {
		t.Fatalf("canceled = %v", got)
	}
	if got := testutil.ToFloat64(obs.escalated); got != 1 {
		t.Fatalf("escalated = %v", got)
	}
	if got := testutil.ToFloat64(obs.suspended.WithLabelValues("func")); got != 1 {
		t.Fatalf("suspended{func} = %v", got)
	}
	if got := testutil.ToFloat64(obs.suspended.WithLabelValues("call")); got != 1 {
		t.Fatalf("suspended{call} = %v", got)
	}
	if got := testutil.ToFloat64(obs.resumed.WithLabelValues("func")); got != 1 {
		t.Fatalf("resumed{func} = %v", got)
	}
}

func TestObserverDrivesTask(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := New(reg)

	task, err := await.Start(func(d *await.Driver[int]) await.Outcome[int] {
		return await.AwaitFunc(d, func() (int, error) {
			return 1, nil
		}, func(n int, err error) await.Outcome[int] {
			return d.Resolve(n)
		})
	}, await.WithObserver(obs))
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if _, err := task.Wait(); err != nil {
		t.Fatalf("wait: %v", err)
	}

	if got := testutil.ToFloat64(obs.started); got != 1 {
		t.Fatalf("started = %v", got)
	}
	if got := testutil.ToFloat64(obs.completed); got != 1 {
		t.Fatalf("completed = %v", got)
	}
}
