package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	reportsTotal   *prometheus.CounterVec
	reportDuration *prometheus.HistogramVec
	errorsTotal    *prometheus.CounterVec
	cacheOps       *prometheus.CounterVec
	lastPrice      *prometheus.GaugeVec
	latency        *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		reportsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finboard_reports_generated_total",
				Help: "Total number of reports generated",
			},
			[]string{"period"},
		),
		reportDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finboard_report_build_seconds",
				Help:    "Time spent building a report",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"period"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finboard_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		cacheOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finboard_cache_requests_total",
				Help: "Cache lookups by cache name and result",
			},
			[]string{"cache", "result"},
		),
		lastPrice: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "finboard_last_price",
				Help: "Last recorded price for a symbol",
			},
			[]string{"symbol"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finboard_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordReport records a completed report build.
func (r *Recorder) RecordReport(period string, seconds float64) {
	r.reportsTotal.WithLabelValues(period).Inc()
	r.reportDuration.WithLabelValues(period).Observe(seconds)
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordCache records a cache lookup outcome.
func (r *Recorder) RecordCache(name string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheOps.WithLabelValues(name, result).Inc()
}

// RecordLastPrice records the last price for a symbol.
func (r *Recorder) RecordLastPrice(symbol string, price float64) {
	r.lastPrice.WithLabelValues(symbol).Set(price)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
