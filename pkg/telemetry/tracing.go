package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dna-dev/dna/internal/errors"
)

// Default tracer name for DNA elements.
const defaultTracerName = "dna"

// TracingConfig configures the OpenTelemetry recorder.
type TracingConfig struct {
	// TracerName is the name of the tracer (default: "dna").
	TracerName string

	// Provider supplies the tracer. Default: the global provider.
	Provider trace.TracerProvider
}

// TracingOption configures the OpenTelemetry recorder.
type TracingOption func(*TracingConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) TracingOption {
	return func(c *TracingConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider sets the tracer provider.
func WithTracerProvider(tp trace.TracerProvider) TracingOption {
	return func(c *TracingConfig) {
		c.Provider = tp
	}
}

// Tracing opens one span per render cycle.
//
// The tracer uses the global OpenTelemetry tracer provider unless one is
// given. Configure it in main() before creating elements:
//
//	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
//	otel.SetTracerProvider(tp)
type Tracing struct {
	tracer trace.Tracer
}

// NewTracing resolves the tracer.
func NewTracing(opts ...TracingOption) *Tracing {
	config := TracingConfig{TracerName: defaultTracerName}
	for _, opt := range opts {
		opt(&config)
	}
	if config.Provider == nil {
		config.Provider = otel.GetTracerProvider()
	}
	return &Tracing{tracer: config.Provider.Tracer(config.TracerName)}
}

// Render implements Recorder. The span is stored in the returned context.
func (t *Tracing) Render(ctx context.Context, tag string) (context.Context, FinishFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	spanCtx, span := t.tracer.Start(ctx, "dna.render",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("dna.tag", tag)),
	)
	return spanCtx, func(patches int, err error) {
		defer span.End()
		span.SetAttributes(attribute.Int("dna.patch_count", patches))
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("dna.error_code", errors.CodeOf(err)))
			span.SetStatus(codes.Error, err.Error())
			return
		}
		span.SetStatus(codes.Ok, "")
	}
}

// UpdateDeferred implements Recorder. Deferred updates are not traced.
func (t *Tracing) UpdateDeferred(string) {}

// Event implements Recorder. Events are not traced separately.
func (t *Tracing) Event(string, string, time.Duration, error) {}

// SpanFromContext returns the span stored by Render, or a non-recording span.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}
