// Package metrics provides the Prometheus registry for the advisor.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "keiba_advisor"

var (
	registry *prometheus.Registry
	once     sync.Once
)

// Cache and upstream metrics
var (
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recommendation_cache_hits_total",
		Help:      "Total number of recommendation cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "recommendation_cache_misses_total",
		Help:      "Total number of recommendation cache misses",
	})
	PredictionFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "prediction_fetches_total",
		Help:      "Total number of prediction source lookups by outcome",
	}, []string{"outcome"})
	PredictionFetchDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "prediction_fetch_duration_seconds",
		Help:      "Latency of prediction source lookups in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(CacheHitsTotal)
		registry.MustRegister(CacheMissesTotal)
		registry.MustRegister(PredictionFetchesTotal)
		registry.MustRegister(PredictionFetchDuration)

		registry.MustRegister(RecommendationsTotal)
		registry.MustRegister(RecommendationDuration)
		registry.MustRegister(AllocatedBudget)
		registry.MustRegister(DifficultyScore)

		registry.MustRegister(PurchasesRecordedTotal)
		registry.MustRegister(PurchasesSettledTotal)
		registry.MustRegister(LedgerRecoveryRate)
		registry.MustRegister(LedgerHitRate)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordCacheHit records a recommendation served from cache.
func RecordCacheHit() {
	CacheHitsTotal.Inc()
}

// RecordCacheMiss records a recommendation computed fresh.
func RecordCacheMiss() {
	CacheMissesTotal.Inc()
}

// RecordPredictionFetch records one prediction source lookup.
func RecordPredictionFetch(durationSeconds float64, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	PredictionFetchesTotal.WithLabelValues(outcome).Inc()
	PredictionFetchDuration.Observe(durationSeconds)
}
