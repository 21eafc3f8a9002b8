package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RefreshTotal    *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
	RefreshSkipped  prometheus.Counter

	RecordsLoaded  prometheus.Gauge
	RecordsDropped prometheus.Counter

	ExportsGenerated *prometheus.CounterVec
	ExportFailures   prometheus.Counter

	EndpointLatency *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RefreshTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "huntboard_directory_refresh_total",
			Help: "Total number of directory refreshes, labeled by result",
		}, []string{"result"}),
		RefreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "huntboard_directory_refresh_duration_seconds",
			Help:    "Duration of directory refresh operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		RefreshSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "huntboard_directory_refresh_skipped_total",
			Help: "Refresh requests skipped because a load was already in flight",
		}),
		RecordsLoaded: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "huntboard_directory_records",
			Help: "Number of user records in the current directory snapshot",
		}),
		RecordsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "huntboard_directory_records_dropped_total",
			Help: "Raw records dropped during enrichment due to validation failures",
		}),
		ExportsGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "huntboard_exports_generated_total",
			Help: "Total number of export documents generated, labeled by subject",
		}, []string{"subject"}),
		ExportFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "huntboard_export_failures_total",
			Help: "Total number of export attempts that failed",
		}),
		EndpointLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "huntboard_endpoint_latency_seconds",
			Help:    "Latency of admin endpoints in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
}

// ObserveRefresh records a completed refresh with its outcome.
func (m *Metrics) ObserveRefresh(result string, durationSeconds float64) {
	m.RefreshTotal.WithLabelValues(result).Inc()
	m.RefreshDuration.Observe(durationSeconds)
}

// SetRecordsLoaded updates the snapshot size gauge.
func (m *Metrics) SetRecordsLoaded(count int) {
	m.RecordsLoaded.Set(float64(count))
}

// IncrementRecordsDropped counts an enrichment drop.
func (m *Metrics) IncrementRecordsDropped() {
	m.RecordsDropped.Inc()
}

// IncrementExports counts a generated export by subject.
func (m *Metrics) IncrementExports(subject string) {
	m.ExportsGenerated.WithLabelValues(subject).Inc()
}

// IncrementExportFailures counts a failed export.
func (m *Metrics) IncrementExportFailures() {
	m.ExportFailures.Inc()
}

// IncrementRefreshSkipped counts a coalesced refresh request.
func (m *Metrics) IncrementRefreshSkipped() {
	m.RefreshSkipped.Inc()
}

// ObserveEndpointLatency records the latency for a given endpoint.
func (m *Metrics) ObserveEndpointLatency(endpoint string, durationSeconds float64) {
	m.EndpointLatency.WithLabelValues(endpoint).Observe(durationSeconds)
}
