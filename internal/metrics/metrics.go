package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "winery",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "winery",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	chainCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "winery",
			Subsystem: "chain",
			Name:      "calls_total",
			Help:      "Contract calls and transactions by method and outcome.",
		},
		[]string{"method", "success"},
	)

	chainDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "winery",
			Subsystem: "chain",
			Name:      "call_duration_seconds",
			Help:      "Duration of contract calls; transactions include waiting to be mined.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"method"},
	)

	uploads = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "winery",
			Subsystem: "storage",
			Name:      "uploads_total",
			Help:      "Uploads to the pinning service by kind and outcome.",
		},
		[]string{"kind", "success"},
	)

	metadataFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "winery",
			Subsystem: "storage",
			Name:      "metadata_fetches_total",
			Help:      "Metadata document lookups by source (cache, gateway) and outcome.",
		},
		[]string{"source", "success"},
	)

	listingsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "winery",
			Subsystem: "marketplace",
			Name:      "listings",
			Help:      "Number of listings in the current snapshot.",
		},
	)

	refreshDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "winery",
			Subsystem: "marketplace",
			Name:      "refresh_duration_seconds",
			Help:      "Duration of full listing aggregations.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)
)

func init() {
	Registry.MustRegister(
		httpRequests,
		httpDuration,
		chainCalls,
		chainDuration,
		uploads,
		metadataFetches,
		listingsGauge,
		refreshDuration,
	)
}

// Handler exposes the registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records one handled request.
func RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	httpRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveChainCall is meant to be deferred with a pointer to the caller's named error.
func ObserveChainCall(method string, start time.Time, err *error) {
	ok := err == nil || *err == nil
	chainCalls.WithLabelValues(method, strconv.FormatBool(ok)).Inc()
	chainDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

// RecordUpload records one upload of kind "metadata" or "image".
func RecordUpload(kind string, ok bool) {
	uploads.WithLabelValues(kind, strconv.FormatBool(ok)).Inc()
}

// RecordMetadataFetch records a metadata lookup served from source.
func RecordMetadataFetch(source string, ok bool) {
	metadataFetches.WithLabelValues(source, strconv.FormatBool(ok)).Inc()
}

// RecordRefresh records a successful aggregation of n listings.
func RecordRefresh(n int, duration time.Duration) {
	listingsGauge.Set(float64(n))
	refreshDuration.Observe(duration.Seconds())
}
