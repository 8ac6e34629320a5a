package observe

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/weft/pkg/weft"
)

// MetricsConfig configures the Prometheus observer.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "weft").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus observer.
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

// WithBuckets sets the histogram buckets.
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
		Namespace: "weft",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics records runtime events as Prometheus metrics:
//
//   - weft_updates_total: frames finished, by lanes and status
//   - weft_update_duration_seconds: frame duration from first render to commit
//   - weft_renders_total: coroutine renders, by coroutine
//   - weft_render_errors_total: render errors, by whether a boundary handled them
//   - weft_commit_duration_seconds: commit phase duration, by phase
//   - weft_effects_total: committed effects, by phase
//   - weft_yields_total: frames suspended to yield to the host
type Metrics struct {
	updatesTotal   *prometheus.CounterVec
	updateDuration *prometheus.HistogramVec
	rendersTotal   *prometheus.CounterVec
	renderErrors   *prometheus.CounterVec
	commitDuration *prometheus.HistogramVec
	effectsTotal   *prometheus.CounterVec
	yieldsTotal    prometheus.Counter
}

// NewMetrics registers the runtime metrics and returns an observer feeding
// them. Registering twice on the same registry panics.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		updatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "updates_total",
			Help:        "Total number of finished update frames",
			ConstLabels: config.ConstLabels,
		}, []string{"lanes", "status"}),

		updateDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "update_duration_seconds",
			Help:        "Update frame duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"lanes"}),

		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of coroutine renders",
			ConstLabels: config.ConstLabels,
		}, []string{"coroutine"}),

		renderErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_errors_total",
			Help:        "Total number of render errors",
			ConstLabels: config.ConstLabels,
		}, []string{"handled"}),

		commitDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "commit_duration_seconds",
			Help:        "Commit phase duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"phase"}),

		effectsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "effects_total",
			Help:        "Total number of committed effects",
			ConstLabels: config.ConstLabels,
		}, []string{"phase"}),

		yieldsTotal: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "yields_total",
			Help:        "Total number of frames suspended to yield to the host",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// OnRuntimeEvent implements weft.Observer.
func (m *Metrics) OnRuntimeEvent(e weft.RuntimeEvent) {
	switch e.Kind {
	case weft.EventUpdateEnd:
		status := "success"
		if e.Err != nil {
			status = "error"
		}
		lanes := e.Lanes.String()
		m.updatesTotal.WithLabelValues(lanes, status).Inc()
		if e.Duration > 0 {
			m.updateDuration.WithLabelValues(lanes).Observe(seconds(e.Duration))
		}
	case weft.EventRenderEnd:
		m.rendersTotal.WithLabelValues(e.Coroutine).Inc()
	case weft.EventRenderError:
		handled := "false"
		if e.Handled {
			handled = "true"
		}
		m.renderErrors.WithLabelValues(handled).Inc()
	case weft.EventCommitEnd:
		phase := e.Phase.String()
		m.commitDuration.WithLabelValues(phase).Observe(seconds(e.Duration))
		if e.Err == nil {
			m.effectsTotal.WithLabelValues(phase).Add(float64(e.Effects))
		}
	case weft.EventYield:
		m.yieldsTotal.Inc()
	}
}

func seconds(d time.Duration) float64 {
	return d.Seconds()
}
