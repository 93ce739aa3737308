package telemetry

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/dna-dev/dna/internal/errors"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("counter Write() error: %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("gauge Write() error: %v", err)
	}
	return m.GetGauge().GetValue()
}

func histogramCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	metric, ok := o.(prometheus.Metric)
	if !ok {
		t.Fatalf("observer %T does not implement prometheus.Metric", o)
	}
	var m dto.Metric
	if err := metric.Write(&m); err != nil {
		t.Fatalf("histogram Write() error: %v", err)
	}
	return m.GetHistogram().GetSampleCount()
}

func TestPrometheusRender(t *testing.T) {
	p := NewPrometheus(WithRegistry(prometheus.NewRegistry()))

	_, finish := p.Render(context.Background(), "x-counter")
	finish(3, nil)
	_, finish = p.Render(context.Background(), "x-counter")
	finish(0, errors.New(errors.CodeRenderFailed))
	_, finish = p.Render(context.Background(), "x-counter")
	finish(0, stderrors.New("plain"))

	if got := counterValue(t, p.rendersTotal.WithLabelValues("x-counter", "success")); got != 1 {
		t.Errorf("renders_total(success) = %v, want 1", got)
	}
	if got := counterValue(t, p.rendersTotal.WithLabelValues("x-counter", "error")); got != 2 {
		t.Errorf("renders_total(error) = %v, want 2", got)
	}
	if got := counterValue(t, p.renderErrors.WithLabelValues("x-counter", "E003")); got != 1 {
		t.Errorf("render_errors_total(E003) = %v, want 1", got)
	}
	if got := counterValue(t, p.renderErrors.WithLabelValues("x-counter", "unknown")); got != 1 {
		t.Errorf("render_errors_total(unknown) = %v, want 1", got)
	}
	if got := counterValue(t, p.patchesTotal.WithLabelValues("x-counter")); got != 3 {
		t.Errorf("patches_total = %v, want 3", got)
	}
	if got := histogramCount(t, p.renderDuration.WithLabelValues("x-counter")); got != 3 {
		t.Errorf("render_duration_seconds count = %d, want 3", got)
	}
}

func TestPrometheusDeferredEventsSessions(t *testing.T) {
	p := NewPrometheus(WithRegistry(prometheus.NewRegistry()), WithNamespace("test"))

	p.UpdateDeferred("x-a")
	p.UpdateDeferred("x-a")
	p.Event("x-a", "click", time.Millisecond, nil)
	p.Event("x-a", "click", time.Millisecond, stderrors.New("fail"))
	p.SessionOpened()
	p.SessionOpened()
	p.SessionClosed()

	if got := counterValue(t, p.deferredTotal.WithLabelValues("x-a")); got != 2 {
		t.Errorf("deferred_updates_total = %v, want 2", got)
	}
	if got := counterValue(t, p.eventsTotal.WithLabelValues("x-a", "click", "error")); got != 1 {
		t.Errorf("events_total(error) = %v, want 1", got)
	}
	if got := histogramCount(t, p.eventDuration.WithLabelValues("x-a")); got != 2 {
		t.Errorf("event_duration_seconds count = %d, want 2", got)
	}
	if got := gaugeValue(t, p.activeSessions); got != 1 {
		t.Errorf("active_sessions = %v, want 1", got)
	}
}

func TestPrometheusRegistersOnRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	p := NewPrometheus(WithRegistry(reg))
	p.UpdateDeferred("x-a")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	found := false
	for _, f := range families {
		if f.GetName() == "dna_deferred_updates_total" {
			found = true
		}
	}
	if !found {
		t.Error("dna_deferred_updates_total not registered")
	}
}

type recordingProvider struct {
	noop.TracerProvider
	names []string
}

func (p *recordingProvider) Tracer(name string, opts ...trace.TracerOption) trace.Tracer {
	p.names = append(p.names, name)
	return p.TracerProvider.Tracer(name, opts...)
}

func TestTracing(t *testing.T) {
	tp := &recordingProvider{}
	tr := NewTracing(WithTracerProvider(tp), WithTracerName("elements"))
	if len(tp.names) != 1 || tp.names[0] != "elements" {
		t.Errorf("tracer names = %v, want [elements]", tp.names)
	}

	ctx, finish := tr.Render(context.Background(), "x-a")
	if SpanFromContext(ctx) == nil {
		t.Fatal("SpanFromContext() = nil")
	}
	finish(2, nil)

	_, finish = tr.Render(context.Background(), "x-a")
	finish(0, errors.New(errors.CodeRenderFailed))
}

func TestTracingDefaultProvider(t *testing.T) {
	tr := NewTracing()
	ctx, finish := tr.Render(context.Background(), "x-a")
	defer finish(0, nil)
	if trace.SpanFromContext(ctx) == nil {
		t.Error("expected a span in the context")
	}
}

type fakeRecorder struct {
	name string
	log  *[]string
}

func (f fakeRecorder) Render(ctx context.Context, tag string) (context.Context, FinishFunc) {
	*f.log = append(*f.log, f.name+".start")
	return ctx, func(int, error) { *f.log = append(*f.log, f.name+".finish") }
}

func (f fakeRecorder) UpdateDeferred(string) { *f.log = append(*f.log, f.name+".deferred") }

func (f fakeRecorder) Event(string, string, time.Duration, error) {
	*f.log = append(*f.log, f.name+".event")
}

func TestMulti(t *testing.T) {
	var log []string
	m := Multi(fakeRecorder{"a", &log}, nil, fakeRecorder{"b", &log})

	_, finish := m.Render(context.Background(), "x")
	finish(0, nil)
	m.UpdateDeferred("x")
	m.Event("x", "click", 0, nil)

	want := []string{"a.start", "b.start", "b.finish", "a.finish", "a.deferred", "b.deferred", "a.event", "b.event"}
	if len(log) != len(want) {
		t.Fatalf("log = %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("log[%d] = %q, want %q", i, log[i], want[i])
		}
	}
}

func TestMultiCollapses(t *testing.T) {
	if Multi() != Nop {
		t.Error("Multi() != Nop")
	}
	p := NewPrometheus(WithRegistry(prometheus.NewRegistry()))
	if Multi(nil, p) != Recorder(p) {
		t.Error("Multi(single) did not return the recorder itself")
	}
	ctx := context.Background()
	got, finish := Nop.Render(ctx, "x")
	finish(0, nil)
	if got != ctx {
		t.Error("Nop.Render changed the context")
	}
}
