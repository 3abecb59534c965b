package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	CycleCompleted = "completed"
	CycleFailed    = "failed"
	CycleSkipped   = "skipped_locked"
)

// WorkerMetrics covers the scheduled analysis worker: whole cycles, the jobs
// inside them and when each job last succeeded.
type WorkerMetrics struct {
	cycles      *prometheus.CounterVec
	jobRuns     *prometheus.CounterVec
	jobDuration *prometheus.HistogramVec
	lastSuccess *prometheus.GaugeVec
}

func NewWorkerMetrics(reg prometheus.Registerer) *WorkerMetrics {
	if reg == nil {
		return &WorkerMetrics{}
	}
	m := &WorkerMetrics{
		cycles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "freight_worker_cycles_total",
			Help: "Scheduled worker cycles by outcome.",
		}, []string{"outcome"}),
		jobRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "freight_worker_job_runs_total",
			Help: "Scheduled job executions by job and result.",
		}, []string{"job", "result"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "freight_worker_job_duration_seconds",
			Help:    "Duration of scheduled jobs in seconds.",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"job"}),
		lastSuccess: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "freight_worker_job_last_success_timestamp_seconds",
			Help: "Unix time of the most recent successful run of each job.",
		}, []string{"job"}),
	}
	reg.MustRegister(m.cycles, m.jobRuns, m.jobDuration, m.lastSuccess)
	return m
}

// ObserveCycle counts one cycle. outcome is one of the Cycle constants.
func (m *WorkerMetrics) ObserveCycle(outcome string) {
	if m == nil || m.cycles == nil {
		return
	}
	m.cycles.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveJob records a finished job run; finishedAt feeds the last-success
// gauge when err is nil.
func (m *WorkerMetrics) ObserveJob(job string, d time.Duration, finishedAt time.Time, err error) {
	if m == nil || m.jobRuns == nil {
		return
	}
	job = normalizeLabel(job)
	m.jobDuration.WithLabelValues(job).Observe(d.Seconds())
	if err != nil {
		m.jobRuns.WithLabelValues(job, "failure").Inc()
		return
	}
	m.jobRuns.WithLabelValues(job, "success").Inc()
	m.lastSuccess.WithLabelValues(job).Set(float64(finishedAt.Unix()))
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
