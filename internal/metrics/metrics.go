// Package metrics provides the centralized Prometheus registry for the
// estimation service.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	EstimatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "longshot",
		Name:      "estimates_total",
		Help:      "Total estimates produced, by source type",
	}, []string{"source_type"})
	ResolverHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "longshot",
		Name:      "resolver_hits_total",
		Help:      "Descriptors priced per resolver family",
	}, []string{"resolver"})
	CacheLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "longshot",
		Name:      "cache_lookups_total",
		Help:      "Estimation cache lookups by tier and result",
	}, []string{"tier", "result"})
	CacheDriftInvalidationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "longshot",
		Name:      "cache_drift_invalidations_total",
		Help:      "Stable-tier entries invalidated by snapshot drift, by signal",
	}, []string{"signal"})
	FallbackCallsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "longshot",
		Name:      "fallback_calls_total",
		Help:      "Generative fallback escalations, by result",
	}, []string{"result"})
	ProviderRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "longshot",
		Name:      "provider_refresh_total",
		Help:      "Background provider refreshes, by provider and result",
	}, []string{"provider", "result"})
)

// Gauge metrics
var (
	RosterPlayers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "longshot",
		Name:      "roster_players",
		Help:      "Number of players currently in the roster index",
	})
	RosterLastRefresh = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "longshot",
		Name:      "roster_last_refresh_timestamp_seconds",
		Help:      "Unix time of the last successful roster refresh",
	})
	OddsLastRefresh = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "longshot",
		Name:      "odds_last_refresh_timestamp_seconds",
		Help:      "Unix time of the last successful odds refresh",
	})
)

// Histogram metrics
var (
	EstimateDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "longshot",
		Name:      "estimate_duration_seconds",
		Help:      "End-to-end duration of one estimation request",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(EstimatesTotal)
		registry.MustRegister(ResolverHitsTotal)
		registry.MustRegister(CacheLookupsTotal)
		registry.MustRegister(CacheDriftInvalidationsTotal)
		registry.MustRegister(FallbackCallsTotal)
		registry.MustRegister(ProviderRefreshTotal)

		registry.MustRegister(RosterPlayers)
		registry.MustRegister(RosterLastRefresh)
		registry.MustRegister(OddsLastRefresh)

		registry.MustRegister(EstimateDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordEstimate records one produced estimate.
func RecordEstimate(sourceType string, durationSeconds float64) {
	EstimatesTotal.WithLabelValues(sourceType).Inc()
	EstimateDuration.Observe(durationSeconds)
}

// RecordResolverHit records a descriptor priced by a resolver family.
func RecordResolverHit(resolver string) {
	ResolverHitsTotal.WithLabelValues(resolver).Inc()
}

// RecordCacheLookup records a cache lookup outcome.
func RecordCacheLookup(tier, result string) {
	CacheLookupsTotal.WithLabelValues(tier, result).Inc()
}

// RecordCacheDrift records a stable-tier drift invalidation.
func RecordCacheDrift(signal string) {
	CacheDriftInvalidationsTotal.WithLabelValues(signal).Inc()
}

// RecordFallbackCall records a generative fallback escalation.
func RecordFallbackCall(result string) {
	FallbackCallsTotal.WithLabelValues(result).Inc()
}

// RecordProviderRefresh records a background provider refresh.
func RecordProviderRefresh(provider, result string) {
	ProviderRefreshTotal.WithLabelValues(provider, result).Inc()
}
