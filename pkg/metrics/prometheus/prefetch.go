package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/hdrive/pkg/metrics"
	"github.com/marmos91/hdrive/pkg/prefetch"
)

// prefetchMetrics is the Prometheus implementation of prefetch.Metrics.
type prefetchMetrics struct {
	runs        *prometheus.CounterVec
	runDuration prometheus.Histogram
	takes       *prometheus.CounterVec
	takeWait    prometheus.Histogram
}

// NewPrefetchMetrics returns pipeline metrics, or nil if metrics are disabled.
func NewPrefetchMetrics() prefetch.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}
	return newPrefetchMetrics(metrics.GetRegistry())
}

func newPrefetchMetrics(reg prometheus.Registerer) *prefetchMetrics {
	f := promauto.With(reg)
	return &prefetchMetrics{
		runs: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Subsystem: "prefetch",
				Name:      "runs_total",
				Help:      "Background batch computations by status",
			},
			[]string{"status"}, // success, error
		),
		runDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metrics.Namespace,
				Subsystem: "prefetch",
				Name:      "run_duration_milliseconds",
				Help:      "Time to sample and load a batch in the background",
				Buckets:   []float64{1, 5, 10, 50, 100, 250, 500, 1000, 5000},
			},
		),
		takes: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Subsystem: "prefetch",
				Name:      "takes_total",
				Help:      "Confirms by whether the next batch was already ready",
			},
			[]string{"ready"},
		),
		takeWait: f.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metrics.Namespace,
				Subsystem: "prefetch",
				Name:      "take_wait_milliseconds",
				Help:      "Time a confirm spent waiting for the next batch",
				Buckets:   []float64{0.1, 1, 10, 50, 100, 500, 1000, 5000},
			},
		),
	}
}

func (m *prefetchMetrics) ObserveRun(d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.runs.WithLabelValues(status).Inc()
	m.runDuration.Observe(d.Seconds() * 1000)
}

func (m *prefetchMetrics) ObserveTake(wait time.Duration, ready bool) {
	if m == nil {
		return
	}
	label := "false"
	if ready {
		label = "true"
	}
	m.takes.WithLabelValues(label).Inc()
	m.takeWait.Observe(wait.Seconds() * 1000)
}
