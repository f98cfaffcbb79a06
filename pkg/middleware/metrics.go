package middleware

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/partstream/partstream/pkg/blob"
	"github.com/partstream/partstream/pkg/upload"
)

// MetricsConfig configures the Prometheus metrics middleware.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "partstream").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// SizeBuckets are the histogram buckets for stored upload sizes.
	// Default: exponential 1KB..100MB.
	SizeBuckets []float64

	// DurationBuckets are the histogram buckets for handler duration.
	// Default: prometheus.DefBuckets.
	DurationBuckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer.
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus metrics middleware.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithSizeBuckets sets the histogram buckets for stored upload sizes.
func WithSizeBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.SizeBuckets = buckets
	}
}

// WithDurationBuckets sets the histogram buckets for handler duration.
func WithDurationBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.DurationBuckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

// defaultMetricsConfig returns the default metrics configuration.
func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace:       "partstream",
		SizeBuckets:     prometheus.ExponentialBuckets(1024, 10, 6), // 1KB to 100MB
		DurationBuckets: prometheus.DefBuckets,
		Registry:        prometheus.DefaultRegisterer,
	}
}

// metrics holds the Prometheus metrics for upload handling.
type metrics struct {
	uploadsTotal   *prometheus.CounterVec
	uploadBytes    prometheus.Histogram
	uploadDuration prometheus.Histogram
	rejectedTotal  *prometheus.CounterVec
}

// globalMetrics is the singleton metrics instance, created on the first
// call to Prometheus().
var (
	globalMetrics   *metrics
	globalMetricsMu sync.Mutex
)

// initMetrics initializes the Prometheus metrics.
func initMetrics(config MetricsConfig) *metrics {
	factory := promauto.With(config.Registry)

	return &metrics{
		uploadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "uploads_total",
			Help:        "Total number of upload parts processed",
			ConstLabels: config.ConstLabels,
		}, []string{"field", "status"}),

		uploadBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "upload_bytes",
			Help:        "Size in bytes of stored uploads",
			ConstLabels: config.ConstLabels,
			Buckets:     config.SizeBuckets,
		}),

		uploadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "upload_duration_seconds",
			Help:        "Time spent handling one upload part",
			ConstLabels: config.ConstLabels,
			Buckets:     config.DurationBuckets,
		}),

		rejectedTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "uploads_rejected_total",
			Help:        "Upload parts not stored, by reason",
			ConstLabels: config.ConstLabels,
		}, []string{"reason"}),
	}
}

// Prometheus creates middleware that records metrics for each handled part.
//
// Metrics collected:
//   - partstream_uploads_total: Counter of parts by field and status
//   - partstream_upload_bytes: Histogram of stored upload sizes
//   - partstream_upload_duration_seconds: Histogram of handler duration
//   - partstream_uploads_rejected_total: Counter of unstored parts by reason
//     (skipped, too_large, error)
//
// Example:
//
//	handler := middleware.Prometheus(
//	    middleware.WithNamespace("myapp"),
//	)(upload.NewDiskHandler(cfg))
//
//	http.Handle("/metrics", promhttp.Handler())
func Prometheus(opts ...MetricsOption) Middleware {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	globalMetricsMu.Lock()
	if globalMetrics == nil {
		globalMetrics = initMetrics(config)
	}
	m := globalMetrics
	globalMetricsMu.Unlock()

	return func(next upload.Handler) upload.Handler {
		return func(ctx context.Context, part upload.Part) (blob.Blob, error) {
			start := time.Now()

			b, err := next(ctx, part)

			m.uploadDuration.Observe(time.Since(start).Seconds())

			switch {
			case err != nil:
				m.uploadsTotal.WithLabelValues(part.Name, "error").Inc()
				if errors.Is(err, upload.ErrTooLarge) {
					m.rejectedTotal.WithLabelValues("too_large").Inc()
				} else {
					m.rejectedTotal.WithLabelValues("error").Inc()
				}
			case b == nil:
				m.uploadsTotal.WithLabelValues(part.Name, "skipped").Inc()
				m.rejectedTotal.WithLabelValues("skipped").Inc()
			default:
				m.uploadsTotal.WithLabelValues(part.Name, "stored").Inc()
				m.uploadBytes.Observe(float64(b.Size()))
			}

			return b, err
		}
	}
}
