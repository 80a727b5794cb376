package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReconMetrics records outcomes of reconciliation runs.
type ReconMetrics struct {
	duration *prometheus.HistogramVec
	matched  *prometheus.CounterVec
	disputed *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewReconMetrics registers the reconciliation metrics on the provided registerer.
func NewReconMetrics(reg prometheus.Registerer) *ReconMetrics {
	if reg == nil {
		return &ReconMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reconciliation_duration_seconds",
		Help:    "Duration of reconciliation runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	matched := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconciliation_matched_items",
		Help: "Line items matched across completed runs.",
	}, []string{"supplier"})
	disputed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconciliation_disputed_items",
		Help: "Line items disputed across completed runs.",
	}, []string{"supplier"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "reconciliation_failures",
		Help: "Failed reconciliation runs by error code.",
	}, []string{"code"})
	reg.MustRegister(duration, matched, disputed, failure)
	return &ReconMetrics{
		duration: duration,
		matched:  matched,
		disputed: disputed,
		failure:  failure,
	}
}

// ObserveRun records the duration of a run with its outcome label.
func (r *ReconMetrics) ObserveRun(outcome string, duration time.Duration) {
	if r == nil || r.duration == nil {
		return
	}
	r.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// AddMatched accumulates matched line items for the supplier.
func (r *ReconMetrics) AddMatched(supplier string, count int) {
	if r == nil || r.matched == nil {
		return
	}
	r.matched.WithLabelValues(normalizeLabel(supplier)).Add(float64(count))
}

// AddDisputed accumulates disputed line items for the supplier.
func (r *ReconMetrics) AddDisputed(supplier string, count int) {
	if r == nil || r.disputed == nil {
		return
	}
	r.disputed.WithLabelValues(normalizeLabel(supplier)).Add(float64(count))
}

// IncFailure increments the failure counter for the given error code.
func (r *ReconMetrics) IncFailure(code string) {
	if r == nil || r.failure == nil {
		return
	}
	r.failure.WithLabelValues(normalizeLabel(code)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
