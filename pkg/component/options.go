package component

import (
	"context"
	"log/slog"

	"github.com/dna-dev/dna/pkg/events"
	"github.com/dna-dev/dna/pkg/realm"
	"github.com/dna-dev/dna/pkg/telemetry"
)

// Option configures an Element.
type Option func(*options)

type options struct {
	id        string
	logger    *slog.Logger
	recorder  telemetry.Recorder
	sink      realm.Sink
	hidPrefix string
	maxPasses int
	ctx       context.Context
	props     map[string]any
	onEvent   func(evt *events.Event)
}

// WithID sets the identifier used in log records.
func WithID(id string) Option {
	return func(o *options) { o.id = id }
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRecorder sets the telemetry recorder. Default: telemetry.Nop.
func WithRecorder(r telemetry.Recorder) Option {
	return func(o *options) { o.recorder = r }
}

// WithSink sets where reconciliation patches go. Default: realm.Discard.
func WithSink(sink realm.Sink) Option {
	return func(o *options) { o.sink = sink }
}

// WithHIDPrefix sets the hydration ID prefix of the element's realm.
func WithHIDPrefix(prefix string) Option {
	return func(o *options) { o.hidPrefix = prefix }
}

// WithMaxPasses bounds follow-up render passes.
func WithMaxPasses(n int) Option {
	return func(o *options) { o.maxPasses = n }
}

// WithContext sets the base context of render cycles.
func WithContext(ctx context.Context) Option {
	return func(o *options) { o.ctx = ctx }
}

// WithProps seeds property values during Initialize, before the
// Initialize slot runs. Seeding never notifies observers or renders.
func WithProps(props map[string]any) Option {
	return func(o *options) { o.props = props }
}

// WithEventSink receives every event dispatched on the host after its
// listeners ran.
func WithEventSink(fn func(evt *events.Event)) Option {
	return func(o *options) { o.onEvent = fn }
}
