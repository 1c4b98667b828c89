package worker

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	outcomeSucceeded = "succeeded"
	outcomeFailed    = "failed"
	outcomeRejected  = "rejected"
)

// Metrics tracks the summarization pool. A nil *Metrics records nothing.
type Metrics struct {
	jobs       *prometheus.CounterVec
	duration   prometheus.Histogram
	queueDepth prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "digest",
			Name:      "summarize_jobs_total",
			Help:      "Summarization jobs by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "digest",
			Name:      "summarize_duration_seconds",
			Help:      "Time spent fetching, extracting and summarizing one article.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		}),
		queueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "digest",
			Name:      "summarize_queue_depth",
			Help:      "Jobs waiting for a worker.",
		}),
	}
	reg.MustRegister(m.jobs, m.duration, m.queueDepth)
	return m
}

func (m *Metrics) queued() {
	if m == nil {
		return
	}
	m.queueDepth.Inc()
}

func (m *Metrics) dequeued() {
	if m == nil {
		return
	}
	m.queueDepth.Dec()
}

func (m *Metrics) observe(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.jobs.WithLabelValues(outcome).Inc()
	if outcome != outcomeRejected {
		m.duration.Observe(elapsed.Seconds())
	}
}
