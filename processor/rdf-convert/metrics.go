package rdfconvert

import (
	"time"

	"github.com/c360studio/semstreams/metric"
	"github.com/prometheus/client_golang/prometheus"
)

// convertMetrics holds Prometheus metrics for conversion requests.
type convertMetrics struct {
	requestsTotal *prometheus.CounterVec // By mode and status (ok/error)
	errors        *prometheus.CounterVec // By error_type

	duration *prometheus.HistogramVec // By mode

	graphNodes prometheus.Histogram
}

// newConvertMetrics creates and registers the metrics. A nil registry disables them.
func newConvertMetrics(registry *metric.MetricsRegistry) (*convertMetrics, error) {
	if registry == nil {
		return nil, nil
	}

	m := &convertMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semgraph",
			Subsystem: "rdf_convert",
			Name:      "requests_total",
			Help:      "Total number of conversion requests",
		}, []string{"mode", "status"}),

		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "semgraph",
			Subsystem: "rdf_convert",
			Name:      "errors_total",
			Help:      "Total number of failed conversions",
		}, []string{"error_type"}), // parse, convert, collapse, output, snapshot, publish

		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "semgraph",
			Subsystem: "rdf_convert",
			Name:      "duration_seconds",
			Help:      "Conversion duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"mode"}),

		graphNodes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "semgraph",
			Subsystem: "rdf_convert",
			Name:      "graph_nodes",
			Help:      "Number of nodes per converted graph",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
	}

	if err := registry.RegisterCounterVec("rdf_convert", "requests_total", m.requestsTotal); err != nil {
		return nil, err
	}
	if err := registry.RegisterCounterVec("rdf_convert", "errors", m.errors); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogramVec("rdf_convert", "duration", m.duration); err != nil {
		return nil, err
	}
	if err := registry.RegisterHistogram("rdf_convert", "graph_nodes", m.graphNodes); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *convertMetrics) recordSuccess(mode string, nodes int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(mode, "ok").Inc()
	m.duration.WithLabelValues(mode).Observe(duration.Seconds())
	m.graphNodes.Observe(float64(nodes))
}

func (m *convertMetrics) recordError(mode, errorType string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(mode, "error").Inc()
	m.errors.WithLabelValues(errorType).Inc()
}
