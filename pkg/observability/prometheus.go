package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus implements every hook interface with Prometheus collectors.
type Prometheus struct {
	registry *prometheus.Registry

	AnalysesTotal    *prometheus.CounterVec
	AnalysisDuration prometheus.Histogram
	AnalysisNodes    prometheus.Histogram
	LevelFallbacks   prometheus.Counter

	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
	CacheBytes  *prometheus.CounterVec

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPInFlight        prometheus.Gauge
}

// NewPrometheus registers the stratum collectors on reg. A nil reg gets a
// fresh registry.
func NewPrometheus(reg *prometheus.Registry) *Prometheus {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Prometheus{
		registry: reg,

		AnalysesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stratum_analyses_total",
				Help: "Total number of network analyses",
			},
			[]string{"status"}, // ok, error
		),
		AnalysisDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stratum_analysis_duration_seconds",
				Help:    "Duration of network analyses in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
		AnalysisNodes: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stratum_analysis_nodes",
				Help:    "Number of nodes per analysed network",
				Buckets: prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
		LevelFallbacks: f.NewCounter(
			prometheus.CounterOpts{
				Name: "stratum_level_fallbacks_total",
				Help: "Level partitions that ended in the deadlock fallback",
			},
		),

		CacheHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stratum_cache_hits_total",
				Help: "Cache hits by key type",
			},
			[]string{"key_type"},
		),
		CacheMisses: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stratum_cache_misses_total",
				Help: "Cache misses by key type",
			},
			[]string{"key_type"},
		),
		CacheBytes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stratum_cache_written_bytes_total",
				Help: "Bytes written to the cache by key type",
			},
			[]string{"key_type"},
		),

		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stratum_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "stratum_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPInFlight: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "stratum_http_requests_in_flight",
				Help: "HTTP requests currently being served",
			},
		),
	}
}

// Registry returns the registry the collectors live on.
func (p *Prometheus) Registry() *prometheus.Registry { return p.registry }

// OnAnalysisStart implements AnalysisHooks.
func (p *Prometheus) OnAnalysisStart(_ context.Context, nodeCount, _ int) {
	p.AnalysisNodes.Observe(float64(nodeCount))
}

// OnAnalysisComplete implements AnalysisHooks.
func (p *Prometheus) OnAnalysisComplete(_ context.Context, _ int, d time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	p.AnalysesTotal.WithLabelValues(status).Inc()
	p.AnalysisDuration.Observe(d.Seconds())
}

// OnLevelFallback implements AnalysisHooks.
func (p *Prometheus) OnLevelFallback(context.Context, int) {
	p.LevelFallbacks.Inc()
}

// OnCacheHit implements CacheHooks.
func (p *Prometheus) OnCacheHit(_ context.Context, keyType string) {
	p.CacheHits.WithLabelValues(keyType).Inc()
}

// OnCacheMiss implements CacheHooks.
func (p *Prometheus) OnCacheMiss(_ context.Context, keyType string) {
	p.CacheMisses.WithLabelValues(keyType).Inc()
}

// OnCacheSet implements CacheHooks.
func (p *Prometheus) OnCacheSet(_ context.Context, keyType string, size int) {
	p.CacheBytes.WithLabelValues(keyType).Add(float64(size))
}

// OnRequest implements HTTPHooks.
func (p *Prometheus) OnRequest(context.Context, string, string) {
	p.HTTPInFlight.Inc()
}

// OnResponse implements HTTPHooks.
func (p *Prometheus) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	p.HTTPInFlight.Dec()
	p.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

var (
	_ AnalysisHooks = (*Prometheus)(nil)
	_ CacheHooks    = (*Prometheus)(nil)
	_ HTTPHooks     = (*Prometheus)(nil)
)
