package fetchdedupe

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels recorded for every call.
const (
	OutcomeCacheHit  = "cache_hit"
	OutcomeCacheMiss = "cache_miss"
	OutcomeJoined    = "joined"
	OutcomeNetwork   = "network"
)

// MetricsCollector provides Prometheus metrics for the dedupe and cache
// layers. A nil collector is valid and records nothing.
type MetricsCollector struct {
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge

	transportCalls  *prometheus.CounterVec
	transportErrors *prometheus.CounterVec

	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheWrites *prometheus.CounterVec
	cacheSize   prometheus.Gauge

	deduplicationHits *prometheus.CounterVec

	buildInfo *prometheus.GaugeVec

	registerer prometheus.Registerer
}

// NewMetricsCollector creates a metrics collector on the default registerer.
func NewMetricsCollector() *MetricsCollector {
	return NewMetricsCollectorWithRegistry(prometheus.DefaultRegisterer)
}

// NewMetricsCollectorWithRegistry creates a collector using supplied registerer.
func NewMetricsCollectorWithRegistry(registry prometheus.Registerer) *MetricsCollector {
	return NewMetricsCollectorWithNamespace(registry, "fetchdedupe")
}

// NewMetricsCollectorWithNamespace creates a collector whose metric
// names are prefixed with namespace.
func NewMetricsCollectorWithNamespace(registry prometheus.Registerer, namespace string) *MetricsCollector {
	factory := promauto.With(registry)
	mc := &MetricsCollector{
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "requests_total",
				Help:      "Total number of fetch calls by outcome",
			},
			[]string{"method", "outcome", "status_code"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "request_duration_seconds",
				Help:      "Duration of fetch calls in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "outcome"},
		),
		inFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "requests_in_flight",
				Help:      "Number of dispatched requests not yet settled",
			},
		),
		transportCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transport_calls_total",
				Help:      "Total number of calls made to the underlying transport",
			},
			[]string{"method"},
		),
		transportErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transport_errors_total",
				Help:      "Total number of failed transport calls or body decodes",
			},
			[]string{"method"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"method"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_misses_total",
				Help:      "Total number of cache lookups that found nothing",
			},
			[]string{"method"},
		),
		cacheWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cache_writes_total",
				Help:      "Total number of responses written to the cache",
			},
			[]string{"method"},
		),
		cacheSize: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "cache_size",
				Help:      "Current number of entries in cache",
			},
		),
		deduplicationHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "deduplication_hits_total",
				Help:      "Total number of calls that joined an in-flight request",
			},
			[]string{"method"},
		),
		buildInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "build_info",
				Help:      "Library build information, always 1",
			},
			[]string{"version", "commit", "go_version"},
		),
		registerer: registry,
	}

	info := GetVersionInfo()
	mc.buildInfo.WithLabelValues(info["version"], info["commit"], info["go_version"]).Set(1)

	return mc
}

// RecordRequest records call count and duration for an outcome.
func (mc *MetricsCollector) RecordRequest(method, outcome string, statusCode int, duration time.Duration) {
	if mc == nil {
		return
	}

	mc.requestsTotal.WithLabelValues(method, outcome, strconv.Itoa(statusCode)).Inc()
	mc.requestDuration.WithLabelValues(method, outcome).Observe(duration.Seconds())
}

// RecordDispatch counts a transport call and raises the in-flight gauge.
func (mc *MetricsCollector) RecordDispatch(method string) {
	if mc == nil {
		return
	}

	mc.transportCalls.WithLabelValues(method).Inc()
	mc.inFlight.Inc()
}

// RecordSettle lowers the in-flight gauge, counting failures.
func (mc *MetricsCollector) RecordSettle(method string, err error) {
	if mc == nil {
		return
	}

	mc.inFlight.Dec()
	if err != nil {
		mc.transportErrors.WithLabelValues(method).Inc()
	}
}

// RecordCacheHit increments cache hit counter.
func (mc *MetricsCollector) RecordCacheHit(method string) {
	if mc == nil {
		return
	}

	mc.cacheHits.WithLabelValues(method).Inc()
}

// RecordCacheMiss increments cache miss counter.
func (mc *MetricsCollector) RecordCacheMiss(method string) {
	if mc == nil {
		return
	}

	mc.cacheMisses.WithLabelValues(method).Inc()
}

// RecordCacheWrite counts a write and updates the size gauge.
func (mc *MetricsCollector) RecordCacheWrite(method string, size int) {
	if mc == nil {
		return
	}

	mc.cacheWrites.WithLabelValues(method).Inc()
	mc.cacheSize.Set(float64(size))
}

// RecordCacheSize sets cache size gauge.
func (mc *MetricsCollector) RecordCacheSize(size int) {
	if mc == nil {
		return
	}

	mc.cacheSize.Set(float64(size))
}

// RecordDeduplicationHit increments de-dup hit counter.
func (mc *MetricsCollector) RecordDeduplicationHit(method string) {
	if mc == nil {
		return
	}

	mc.deduplicationHits.WithLabelValues(method).Inc()
}

// Registerer exposes the registerer the collector was created with.
func (mc *MetricsCollector) Registerer() prometheus.Registerer {
	if mc == nil {
		return nil
	}
	return mc.registerer
}
