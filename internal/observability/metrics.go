package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the service.
type Metrics struct {
	UpstreamRequestsTotal *prometheus.CounterVec
	UpstreamDuration      *prometheus.HistogramVec
	ParseFailuresTotal    *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// defaultBuckets are duration buckets in seconds.
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// NewMetrics creates and registers all metrics against reg (the default
// registerer when nil).
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Metrics{
		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockquote",
				Subsystem: "upstream",
				Name:      "requests_total",
				Help:      "Upstream provider requests by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),
		UpstreamDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stockquote",
				Subsystem: "upstream",
				Name:      "request_duration_seconds",
				Help:      "Upstream provider request duration",
				Buckets:   defaultBuckets,
			},
			[]string{"provider"},
		),
		ParseFailuresTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockquote",
				Subsystem: "upstream",
				Name:      "parse_failures_total",
				Help:      "Replies rejected by the parser, by provider and reason",
			},
			[]string{"provider", "reason"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "stockquote",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Inbound HTTP requests by path and status",
			},
			[]string{"path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "stockquote",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Inbound HTTP request duration",
				Buckets:   defaultBuckets,
			},
			[]string{"path"},
		),
	}
}

// GetMetrics returns the process-wide metrics, creating them on first use.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		if globalMetrics == nil {
			globalMetrics = NewMetrics(nil)
		}
	})
	return globalMetrics
}

// RecordUpstream records one upstream round trip.
func RecordUpstream(provider, outcome string, d time.Duration) {
	m := GetMetrics()
	m.UpstreamRequestsTotal.WithLabelValues(provider, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// RecordParseFailure records a reply the parser rejected.
func RecordParseFailure(provider, reason string) {
	GetMetrics().ParseFailuresTotal.WithLabelValues(provider, reason).Inc()
}

// RecordHTTP records one inbound request.
func RecordHTTP(path, status string, d time.Duration) {
	m := GetMetrics()
	m.HTTPRequestsTotal.WithLabelValues(path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(path).Observe(d.Seconds())
}
