package telemetry

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dna-dev/dna/internal/errors"
)

// MetricsConfig configures the Prometheus recorder.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "dna").
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

// MetricsOption configures the Prometheus recorder.
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
		Namespace: "dna",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Prometheus records render and event metrics.
//
// Metrics collected:
//   - dna_renders_total: render cycles by tag and status
//   - dna_render_errors_total: failed render cycles by tag and error code
//   - dna_render_duration_seconds: render cycle duration by tag
//   - dna_patches_total: patches produced by tag
//   - dna_deferred_updates_total: update requests coalesced by tag
//   - dna_events_total: dispatched events by tag, type and status
//   - dna_event_duration_seconds: event dispatch duration by tag
//   - dna_active_sessions: open server sessions
type Prometheus struct {
	rendersTotal   *prometheus.CounterVec
	renderErrors   *prometheus.CounterVec
	renderDuration *prometheus.HistogramVec
	patchesTotal   *prometheus.CounterVec
	deferredTotal  *prometheus.CounterVec
	eventsTotal    *prometheus.CounterVec
	eventDuration  *prometheus.HistogramVec
	activeSessions prometheus.Gauge
}

// NewPrometheus registers the metrics with the configured registry.
// Registering twice with the same registry panics.
func NewPrometheus(opts ...MetricsOption) *Prometheus {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Prometheus{
		rendersTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "renders_total",
			Help:        "Total number of element render cycles",
			ConstLabels: config.ConstLabels,
		}, []string{"tag", "status"}),

		renderErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_errors_total",
			Help:        "Total number of failed render cycles",
			ConstLabels: config.ConstLabels,
		}, []string{"tag", "code"}),

		renderDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "render_duration_seconds",
			Help:        "Render cycle duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"tag"}),

		patchesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "patches_total",
			Help:        "Total number of patches produced by reconciliation",
			ConstLabels: config.ConstLabels,
		}, []string{"tag"}),

		deferredTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "deferred_updates_total",
			Help:        "Total number of update requests coalesced into a later cycle",
			ConstLabels: config.ConstLabels,
		}, []string{"tag"}),

		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of dispatched events",
			ConstLabels: config.ConstLabels,
		}, []string{"tag", "type", "status"}),

		eventDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "event_duration_seconds",
			Help:        "Event dispatch duration in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"tag"}),

		activeSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "active_sessions",
			Help:        "Number of open element sessions",
			ConstLabels: config.ConstLabels,
		}),
	}
}

// Render implements Recorder.
func (p *Prometheus) Render(ctx context.Context, tag string) (context.Context, FinishFunc) {
	start := time.Now()
	return ctx, func(patches int, err error) {
		p.renderDuration.WithLabelValues(tag).Observe(time.Since(start).Seconds())
		if err != nil {
			p.rendersTotal.WithLabelValues(tag, "error").Inc()
			p.renderErrors.WithLabelValues(tag, errorCode(err)).Inc()
			return
		}
		p.rendersTotal.WithLabelValues(tag, "success").Inc()
		if patches > 0 {
			p.patchesTotal.WithLabelValues(tag).Add(float64(patches))
		}
	}
}

// UpdateDeferred implements Recorder.
func (p *Prometheus) UpdateDeferred(tag string) {
	p.deferredTotal.WithLabelValues(tag).Inc()
}

// Event implements Recorder.
func (p *Prometheus) Event(tag, typ string, d time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	p.eventsTotal.WithLabelValues(tag, typ, status).Inc()
	p.eventDuration.WithLabelValues(tag).Observe(d.Seconds())
}

// SessionOpened increments the active session gauge.
func (p *Prometheus) SessionOpened() {
	p.activeSessions.Inc()
}

// SessionClosed decrements the active session gauge.
func (p *Prometheus) SessionClosed() {
	p.activeSessions.Dec()
}

// errorCode returns the DNAError code of err, or "unknown".
func errorCode(err error) string {
	if code := errors.CodeOf(err); code != "" {
		return code
	}
	return "unknown"
}
