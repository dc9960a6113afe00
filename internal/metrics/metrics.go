package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TasksDispatched counts envelopes successfully pushed to the broker.
	TasksDispatched = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "celerybridge",
		Name:      "tasks_dispatched_total",
		Help:      "Tasks successfully appended to the broker queue.",
	}, []string{"task"})

	// DispatchFailures counts envelopes that could not be pushed.
	DispatchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "celerybridge",
		Name:      "dispatch_failures_total",
		Help:      "Task dispatch attempts that failed at the broker.",
	}, []string{"task"})

	// DaemonScans counts completed poll-and-dispatch sweeps.
	DaemonScans = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "celerybridge",
		Name:      "daemon_scans_total",
		Help:      "Completed scans of the pending-submissions table.",
	})

	// DaemonErrors counts per-submission failures inside a sweep.
	DaemonErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "celerybridge",
		Name:      "daemon_errors_total",
		Help:      "Per-submission errors logged and skipped by the daemon.",
	})
)
