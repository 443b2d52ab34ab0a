// Package prom provides a Prometheus-backed implementation of the
// await.Observer interface.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"awaitkit/await"
)

// Observer counts driver lifecycle events and tracks computation duration.
// It implements await.Observer and may be shared by any number of drivers.
type Observer struct {
	started    prometheus.Counter
	completed  prometheus.Counter
	failed     prometheus.Counter
	canceled   prometheus.Counter
	escalated  prometheus.Counter
	suspended  *prometheus.CounterVec
	resumed    *prometheus.CounterVec
	durSeconds prometheus.Histogram
}

// New registers the observer's collectors with reg and returns it.
// Pass prometheus.DefaultRegisterer to use the default registry.
func New(reg prometheus.Registerer) *Observer {
	factory := promauto.With(reg)
	return &Observer{
		started: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "awaitkit", Name: "tasks_started_total",
			Help: "Computations started.",
		}),
		completed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "awaitkit", Name: "tasks_completed_total",
			Help: "Computations that finished with a value.",
		}),
		failed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "awaitkit", Name: "tasks_failed_total",
			Help: "Computations that finished with an error.",
		}),
		canceled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "awaitkit", Name: "tasks_canceled_total",
			Help: "Tasks canceled.",
		}),
		escalated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "awaitkit", Name: "errors_escalated_total",
			Help: "Errors recorded with no observer listening.",
		}),
		suspended: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "awaitkit", Name: "suspensions_total",
			Help: "Suspensions by source kind.",
		}, []string{"source"}),
		resumed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "awaitkit", Name: "resumptions_total",
			Help: "Resumptions by source kind.",
		}, []string{"source"}),
		durSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "awaitkit", Name: "task_duration_seconds",
			Help:    "Time from start to terminal outcome.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

func (o *Observer) TaskStarted() { o.started.Inc() }

func (o *Observer) TaskSuspended(kind await.SourceKind) {
	o.suspended.WithLabelValues(kind.String()).Inc()
}

func (o *Observer) TaskResumed(kind await.SourceKind) {
	o.resumed.WithLabelValues(kind.String()).Inc()
}

func (o *Observer) TaskCompleted(dur time.Duration) {
	o.completed.Inc()
	o.durSeconds.Observe(dur.Seconds())
}

func (o *Observer) TaskFailed(dur time.Duration, _ error) {
	o.failed.Inc()
	o.durSeconds.Observe(dur.Seconds())
}

func (o *Observer) TaskCanceled() { o.canceled.Inc() }

func (o *Observer) ErrorEscalated(_ error) { o.escalated.Inc() }
