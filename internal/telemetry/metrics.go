// Package telemetry exposes Prometheus metrics for analysis runs and price fetches.
//
// Every method is safe on a nil *Metrics so components can run without it.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	OutcomeOK      = "ok"
	OutcomeError   = "error"
	OutcomeSkipped = "skipped"
	OutcomeCached  = "cached"
)

// Metrics holds all Prometheus collectors for riskscope
// ⭐ SSOT: 메트릭 정의는 여기서만
type Metrics struct {
	registry *prometheus.Registry

	runs            *prometheus.CounterVec
	runDuration     prometheus.Histogram
	categories      *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	providerFetches *prometheus.CounterVec
	providerLatency *prometheus.HistogramVec
	episodes        prometheus.Histogram
}

// New creates a registry with every riskscope collector registered
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskscope_analysis_runs_total",
				Help: "Total number of analysis runs by outcome",
			},
			[]string{"outcome"},
		),

		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "riskscope_analysis_duration_seconds",
				Help:    "Duration of full analysis runs in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),

		categories: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskscope_category_results_total",
				Help: "Metric category results by category and outcome",
			},
			[]string{"category", "outcome"},
		),

		cacheLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskscope_cache_lookups_total",
				Help: "Snapshot cache lookups by cache and result",
			},
			[]string{"cache", "result"},
		),

		providerFetches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "riskscope_provider_fetches_total",
				Help: "Price provider fetches by provider and outcome",
			},
			[]string{"provider", "outcome"},
		),

		providerLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "riskscope_provider_latency_seconds",
				Help:    "Price provider fetch latency in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"provider"},
		),

		episodes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "riskscope_drawdown_episodes",
				Help:    "Number of drawdown episodes extracted per run",
				Buckets: prometheus.LinearBuckets(0, 5, 10),
			},
		),
	}

	m.registry.MustRegister(
		m.runs, m.runDuration, m.categories, m.cacheLookups,
		m.providerFetches, m.providerLatency, m.episodes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry (tests, custom collectors)
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveRun records one analysis run
func (m *Metrics) ObserveRun(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
	if outcome != OutcomeCached {
		m.runDuration.Observe(d.Seconds())
	}
}

// ObserveCategory records one category result
func (m *Metrics) ObserveCategory(category, outcome string) {
	if m == nil {
		return
	}
	m.categories.WithLabelValues(category, outcome).Inc()
}

// ObserveCache records a cache lookup ("hit", "miss", "error")
func (m *Metrics) ObserveCache(cache, result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(cache, result).Inc()
}

// ObserveFetch records one provider fetch
func (m *Metrics) ObserveFetch(provider, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.providerFetches.WithLabelValues(provider, outcome).Inc()
	m.providerLatency.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveEpisodes records the episode count of one extraction
func (m *Metrics) ObserveEpisodes(n int) {
	if m == nil {
		return
	}
	m.episodes.Observe(float64(n))
}
