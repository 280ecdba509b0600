// Package metrics provides Prometheus metrics for the scheduling engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SchedulingRuns counts completed scheduling runs.
var SchedulingRuns = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "prodplan",
	Name:      "scheduling_runs_total",
	Help:      "Total completed scheduling runs.",
})

// RunDuration tracks scheduling run duration in seconds.
var RunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "prodplan",
	Name:      "run_duration_seconds",
	Help:      "Scheduling run duration in seconds.",
	Buckets:   prometheus.DefBuckets,
})

// TasksScheduled counts tasks that received at least one slot.
var TasksScheduled = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "prodplan",
	Name:      "tasks_scheduled_total",
	Help:      "Total tasks committed to the plan.",
})

// TasksSkipped counts tasks left unscheduled, by reason.
var TasksSkipped = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "prodplan",
	Name:      "tasks_skipped_total",
	Help:      "Total tasks left unscheduled.",
}, []string{"reason"})

// SlotsWritten counts schedule slots persisted by the writer.
var SlotsWritten = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "prodplan",
	Name:      "slots_written_total",
	Help:      "Total schedule slots written to the store.",
})
