package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cyclesTotal        prometheus.Counter
	challengesListed   prometheus.Gauge
	challengesEligible prometheus.Gauge
	uploadsTotal       *prometheus.CounterVec
	seriesFailures     *prometheus.CounterVec
	errorsTotal        *prometheus.CounterVec
	latency            *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cyclesTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "arenapull_cycles_total",
				Help: "Total number of completed poll cycles",
			},
		),
		challengesListed: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "arenapull_challenges_listed",
				Help: "Challenges returned by the last listing call",
			},
		),
		challengesEligible: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "arenapull_challenges_eligible",
				Help: "Challenges inside their registration window in the last cycle",
			},
		),
		uploadsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arenapull_uploads_total",
				Help: "Total number of forecast upload attempts",
			},
			[]string{"model", "outcome"},
		),
		seriesFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arenapull_series_failures_total",
				Help: "Total number of per-series prediction failures",
			},
			[]string{"stage"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arenapull_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arenapull_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordCycle records a completed poll cycle and its duration.
func (r *Recorder) RecordCycle(seconds float64) {
	r.cyclesTotal.Inc()
	r.latency.WithLabelValues("cycle").Observe(seconds)
}

// RecordChallenges records listing results for the current cycle.
func (r *Recorder) RecordChallenges(listed, eligible int) {
	r.challengesListed.Set(float64(listed))
	r.challengesEligible.Set(float64(eligible))
}

// RecordUpload records an upload attempt outcome for a model.
func (r *Recorder) RecordUpload(model, outcome string) {
	r.uploadsTotal.WithLabelValues(model, outcome).Inc()
}

// RecordSeriesFailure records a per-series prediction failure by stage.
func (r *Recorder) RecordSeriesFailure(stage string) {
	r.seriesFailures.WithLabelValues(stage).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
