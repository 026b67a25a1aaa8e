// Package metrics instruments the ingest, query, and cache paths with
// Prometheus counters and histograms.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type registry struct {
	once sync.Once

	ingestTotal    prometheus.Counter
	ingestErrors   prometheus.Counter
	ingestReview   prometheus.Counter
	ingestDuration prometheus.Histogram

	queryTotal     *prometheus.CounterVec
	queryDuration  prometheus.Histogram
	llmFailures    prometheus.Counter
	llmTimeouts    prometheus.Counter

	cacheHits   prometheus.Counter
	cacheMisses prometheus.Counter
	cacheSize   prometheus.Gauge
}

var m registry

var durationBuckets = []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

func (r *registry) init() {
	r.once.Do(func() {
		r.ingestTotal = prometheus.NewCounter(prometheus.CounterOpts{Name: "docqa_ingest_total", Help: "Documents ingested"})
		r.ingestErrors = prometheus.NewCounter(prometheus.CounterOpts{Name: "docqa_ingest_errors_total", Help: "Ingests rejected for schema/input errors"})
		r.ingestReview = prometheus.NewCounter(prometheus.CounterOpts{Name: "docqa_ingest_needs_review_total", Help: "Ingests flagged needs_human_review"})
		r.ingestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "docqa_ingest_duration_seconds", Help: "Ingest pipeline duration", Buckets: durationBuckets})

		r.queryTotal = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "docqa_query_total", Help: "Chat turns by intent kind"}, []string{"intent"})
		r.queryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "docqa_query_duration_seconds", Help: "Chat turn duration", Buckets: durationBuckets})
		r.llmFailures = prometheus.NewCounter(prometheus.CounterOpts{Name: "docqa_llm_failures_total", Help: "LLM calls that returned ExternalUnavailable"})
		r.llmTimeouts = prometheus.NewCounter(prometheus.CounterOpts{Name: "docqa_llm_timeouts_total", Help: "LLM calls that exceeded their deadline"})

		r.cacheHits = prometheus.NewCounter(prometheus.CounterOpts{Name: "docqa_cache_hits_total", Help: "Retrieval cache hits"})
		r.cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{Name: "docqa_cache_misses_total", Help: "Retrieval cache misses"})
		r.cacheSize = prometheus.NewGauge(prometheus.GaugeOpts{Name: "docqa_cache_size", Help: "Current retrieval cache entry count"})

		prometheus.MustRegister(
			r.ingestTotal, r.ingestErrors, r.ingestReview, r.ingestDuration,
			r.queryTotal, r.queryDuration, r.llmFailures, r.llmTimeouts,
			r.cacheHits, r.cacheMisses, r.cacheSize,
		)
	})
}

func RecordIngest(err error, needsReview bool, seconds float64) {
	m.init()
	m.ingestTotal.Inc()
	if err != nil {
		m.ingestErrors.Inc()
	}
	if needsReview {
		m.ingestReview.Inc()
	}
	m.ingestDuration.Observe(seconds)
}

func RecordQuery(intentKind string, seconds float64) {
	m.init()
	m.queryTotal.WithLabelValues(intentKind).Inc()
	m.queryDuration.Observe(seconds)
}

func RecordLLMFailure() { m.init(); m.llmFailures.Inc() }
func RecordLLMTimeout() { m.init(); m.llmTimeouts.Inc() }

func RecordCacheHit()          { m.init(); m.cacheHits.Inc() }
func RecordCacheMiss()         { m.init(); m.cacheMisses.Inc() }
func SetCacheSize(size float64) { m.init(); m.cacheSize.Set(size) }
