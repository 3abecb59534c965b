package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// QuoteMetrics tracks calls to external carrier rate providers.
type QuoteMetrics struct {
	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewQuoteMetrics registers the rate quote metrics. A nil registerer yields a
// no-op recorder.
func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	if reg == nil {
		return &QuoteMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "freight_rate_quote_requests_total",
		Help: "Carrier rate quote lookups by provider and outcome.",
	}, []string{"provider", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "freight_rate_quote_duration_seconds",
		Help:    "Latency of carrier rate quote lookups.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
	}, []string{"provider"})
	reg.MustRegister(requests, latency)
	return &QuoteMetrics{requests: requests, latency: latency}
}

// Observe records one provider call. outcome is ok, cache_hit, error or timeout.
func (q *QuoteMetrics) Observe(provider, outcome string, d time.Duration) {
	if q == nil || q.requests == nil {
		return
	}
	q.requests.WithLabelValues(normalizeLabel(provider), normalizeLabel(outcome)).Inc()
	if outcome != "cache_hit" {
		q.latency.WithLabelValues(normalizeLabel(provider)).Observe(d.Seconds())
	}
}

// AnalysisMetrics tracks analysis passes and their outputs.
type AnalysisMetrics struct {
	runs        *prometheus.CounterVec
	duration    prometheus.Histogram
	alerts      *prometheus.CounterVec
	dataIssues  prometheus.Counter
	transitions *prometheus.CounterVec
}

func NewAnalysisMetrics(reg prometheus.Registerer) *AnalysisMetrics {
	if reg == nil {
		return &AnalysisMetrics{}
	}
	m := &AnalysisMetrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "freight_analysis_runs_total",
			Help: "Analysis passes by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "freight_analysis_duration_seconds",
			Help:    "Duration of full analysis passes.",
			Buckets: prometheus.DefBuckets,
		}),
		alerts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "freight_alerts_generated_total",
			Help: "Alerts produced by analysis passes.",
		}, []string{"type", "priority"}),
		dataIssues: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "freight_ledger_data_quality_issues_total",
			Help: "Order rows excluded from the ledger.",
		}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "freight_purchase_request_transitions_total",
			Help: "Purchase request status transitions.",
		}, []string{"to"}),
	}
	reg.MustRegister(m.runs, m.duration, m.alerts, m.dataIssues, m.transitions)
	return m
}

func (a *AnalysisMetrics) ObserveRun(result string, d time.Duration) {
	if a == nil || a.runs == nil {
		return
	}
	a.runs.WithLabelValues(normalizeLabel(result)).Inc()
	a.duration.Observe(d.Seconds())
}

func (a *AnalysisMetrics) IncAlert(alertType, priority string) {
	if a == nil || a.alerts == nil {
		return
	}
	a.alerts.WithLabelValues(normalizeLabel(alertType), normalizeLabel(priority)).Inc()
}

func (a *AnalysisMetrics) AddDataIssues(n int) {
	if a == nil || a.dataIssues == nil || n <= 0 {
		return
	}
	a.dataIssues.Add(float64(n))
}

func (a *AnalysisMetrics) IncTransition(to string) {
	if a == nil || a.transitions == nil {
		return
	}
	a.transitions.WithLabelValues(normalizeLabel(to)).Inc()
}
