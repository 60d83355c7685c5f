package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus render metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "tessera").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for render duration.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the render metrics.
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

// WithBuckets sets the render duration histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "tessera",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics records render activity. It implements markup.Observer, so it
// can be set as Options.Observer to count rejected input and depth
// failures. All methods are safe for concurrent use.
type Metrics struct {
	rendersTotal   *prometheus.CounterVec
	renderDuration prometheus.Histogram
	renderBytes    prometheus.Histogram
	rejections     *prometheus.CounterVec
	depthExceeded  prometheus.Counter
}

// NewMetrics registers the render metrics.
//
// Metrics collected:
//   - tessera_renders_total: Counter of renders by status (ok, error)
//   - tessera_render_duration_seconds: Histogram of render duration
//   - tessera_render_bytes: Histogram of rendered document size
//   - tessera_rejections_total: Counter of dropped input by code and tag
//   - tessera_depth_exceeded_total: Counter of depth limit failures
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of node trees rendered",
			ConstLabels: config.ConstLabels,
		}, []string{"status"}),

		renderDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Render duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		renderBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_bytes",
			Help:        "Size of rendered markup in bytes",
			ConstLabels: config.ConstLabels,
			Buckets:     []float64{256, 1024, 4096, 16384, 65536, 262144, 1048576}, // 256B to 1MB
		}),

		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "rejections_total",
			Help:        "Total number of dropped style, URL, attribute or token inputs",
			ConstLabels: config.ConstLabels,
		}, []string{"code", "tag"}),

		depthExceeded: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "depth_exceeded_total",
			Help:        "Total number of renders aborted by the block depth limit",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// ObserveRender records one finished render.
func (m *Metrics) ObserveRender(d time.Duration, size int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.rendersTotal.WithLabelValues(status).Inc()
	m.renderDuration.Observe(d.Seconds())
	if err == nil {
		m.renderBytes.Observe(float64(size))
	}
}

// Rejected counts a dropped input.
func (m *Metrics) Rejected(code, tag string) {
	m.rejections.WithLabelValues(code, tag).Inc()
}

// DepthExceeded counts a depth limit failure.
func (m *Metrics) DepthExceeded(tag string, depth int) {
	m.depthExceeded.Inc()
}
