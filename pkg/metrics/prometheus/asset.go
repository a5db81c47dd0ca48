// Package prometheus implements the component metrics interfaces on top of
// the registry in pkg/metrics.
package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/hdrive/pkg/asset"
	"github.com/marmos91/hdrive/pkg/metrics"
)

// assetMetrics is the Prometheus implementation of asset.CacheMetrics.
type assetMetrics struct {
	lookups      *prometheus.CounterVec
	loads        *prometheus.CounterVec
	loadDuration *prometheus.HistogramVec
	loadBytes    prometheus.Histogram
	entries      *prometheus.GaugeVec
}

// NewAssetMetrics returns cache metrics, or nil if metrics are disabled.
func NewAssetMetrics() asset.CacheMetrics {
	if !metrics.IsEnabled() {
		return nil
	}
	return newAssetMetrics(metrics.GetRegistry())
}

func newAssetMetrics(reg prometheus.Registerer) *assetMetrics {
	f := promauto.With(reg)
	return &assetMetrics{
		lookups: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Subsystem: "asset_cache",
				Name:      "lookups_total",
				Help:      "EnsureLoaded calls by outcome",
			},
			[]string{"outcome"}, // hit, join, miss
		),
		loads: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Subsystem: "asset_cache",
				Name:      "loads_total",
				Help:      "Completed asset loads by terminal state",
			},
			[]string{"state"},
		),
		loadDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metrics.Namespace,
				Subsystem: "asset_cache",
				Name:      "load_duration_milliseconds",
				Help:      "Duration of asset loads in milliseconds",
				Buckets:   []float64{0.5, 1, 5, 10, 50, 100, 500, 1000, 5000},
			},
			[]string{"state"},
		),
		loadBytes: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metrics.Namespace,
				Subsystem: "asset_cache",
				Name:      "load_bytes",
				Help:      "Size of fetched asset payloads",
				Buckets:   prometheus.ExponentialBuckets(1024, 4, 8), // 1KiB .. 16MiB
			},
		),
		entries: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metrics.Namespace,
				Subsystem: "asset_cache",
				Name:      "entries",
				Help:      "Cache entries by terminal state",
			},
			[]string{"state"},
		),
	}
}

func (m *assetMetrics) RecordLookup(outcome string) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(outcome).Inc()
}

func (m *assetMetrics) ObserveLoad(state asset.State, bytes int, d time.Duration) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(state.String()).Inc()
	m.loadDuration.WithLabelValues(state.String()).Observe(d.Seconds() * 1000)
	if bytes > 0 {
		m.loadBytes.Observe(float64(bytes))
	}
}

func (m *assetMetrics) SetEntries(loaded, failed int) {
	if m == nil {
		return
	}
	m.entries.WithLabelValues(asset.Loaded.String()).Set(float64(loaded))
	m.entries.WithLabelValues(asset.Failed.String()).Set(float64(failed))
}
