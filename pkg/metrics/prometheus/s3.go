package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/marmos91/hdrive/pkg/asset/source/s3"
	"github.com/marmos91/hdrive/pkg/metrics"
)

// s3Metrics is the Prometheus implementation of s3.Metrics.
type s3Metrics struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
}

// NewS3Metrics returns S3 source metrics, or nil if metrics are disabled.
func NewS3Metrics() s3.Metrics {
	if !metrics.IsEnabled() {
		return nil
	}
	return newS3Metrics(metrics.GetRegistry())
}

func newS3Metrics(reg prometheus.Registerer) *s3Metrics {
	f := promauto.With(reg)
	return &s3Metrics{
		operations: f.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Subsystem: "s3",
				Name:      "operations_total",
				Help:      "S3 operations by operation and status",
			},
			[]string{"operation", "status"},
		),
		duration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metrics.Namespace,
				Subsystem: "s3",
				Name:      "operation_duration_milliseconds",
				Help:      "Duration of S3 operations in milliseconds",
				Buckets:   []float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
			},
			[]string{"operation"},
		),
	}
}

func (m *s3Metrics) ObserveOperation(operation string, d time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.operations.WithLabelValues(operation, status).Inc()
	m.duration.WithLabelValues(operation).Observe(d.Seconds() * 1000)
}
