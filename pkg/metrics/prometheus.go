package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes Prometheus instruments for the aggregation core.
type Recorder struct {
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	providerRequests *prometheus.CounterVec
	providerErrors   *prometheus.CounterVec
	latency          *prometheus.HistogramVec
}

func New() *Recorder {
	return &Recorder{
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stock_analyzer_cache_hits_total",
				Help: "Cache hits per cache",
			},
			[]string{"cache"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stock_analyzer_cache_misses_total",
				Help: "Cache misses per cache",
			},
			[]string{"cache"},
		),
		providerRequests: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stock_analyzer_provider_requests_total",
				Help: "Outbound calls to external providers",
			},
			[]string{"provider"},
		),
		providerErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stock_analyzer_provider_errors_total",
				Help: "Failed calls to external providers",
			},
			[]string{"provider"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stock_analyzer_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

func (r *Recorder) RecordCacheHit(cache string)  { r.cacheHits.WithLabelValues(cache).Inc() }
func (r *Recorder) RecordCacheMiss(cache string) { r.cacheMisses.WithLabelValues(cache).Inc() }

func (r *Recorder) RecordProviderRequest(provider string) {
	r.providerRequests.WithLabelValues(provider).Inc()
}

func (r *Recorder) RecordProviderError(provider string) {
	r.providerErrors.WithLabelValues(provider).Inc()
}

func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
