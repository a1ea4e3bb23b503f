package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// warnings proxy.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec // labels: outcome={success,error}
	RequestDuration prometheus.Histogram

	CacheLookups *prometheus.CounterVec // labels: result={hit,miss}

	UpstreamRequests *prometheus.CounterVec // labels: outcome={success,error}
	UpstreamDuration prometheus.Histogram

	WarningsReturned prometheus.Histogram

	// Kafka fan-out metrics.
	PublishedWarnings prometheus.Counter
	PublishErrors     prometheus.Counter
}

// NewMetrics creates and registers all proxy metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.CacheLookups,
		m.UpstreamRequests,
		m.UpstreamDuration,
		m.WarningsReturned,
		m.PublishedWarnings,
		m.PublishErrors,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dwd_warnings",
			Name:      "requests_total",
			Help:      "Warnings API requests by outcome.",
		}, []string{"outcome"}),
		RequestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dwd_warnings",
			Name:      "request_duration_seconds",
			Help:      "Duration of a complete warnings request, cache hits included.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dwd_warnings",
			Name:      "cache_lookups_total",
			Help:      "Feature cache lookups by result.",
		}, []string{"result"}),
		UpstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dwd_warnings",
			Name:      "upstream_requests_total",
			Help:      "DWD WFS GetFeature requests by outcome.",
		}, []string{"outcome"}),
		UpstreamDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dwd_warnings",
			Name:      "upstream_duration_seconds",
			Help:      "DWD WFS request duration in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
		}),
		WarningsReturned: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "dwd_warnings",
			Name:      "warnings_returned",
			Help:      "Number of warning features per successful response.",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100, 250, 800},
		}),
		PublishedWarnings: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dwd_warnings",
			Name:      "published_warnings_total",
			Help:      "Normalized warning features published to the fan-out topic.",
		}),
		PublishErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dwd_warnings",
			Name:      "publish_errors_total",
			Help:      "Failed fan-out publish attempts.",
		}),
	}
}
