package component

import (
	"context"
	"log/slog"
	"slices"

	"github.com/dna-dev/dna/internal/errors"
	"github.com/dna-dev/dna/pkg/events"
	"github.com/dna-dev/dna/pkg/property"
	"github.com/dna-dev/dna/pkg/realm"
	"github.com/dna-dev/dna/pkg/scheduler"
	"github.com/dna-dev/dna/pkg/telemetry"
	"github.com/dna-dev/dna/pkg/vdom"
)

// Element is one instance of a Definition.
type Element struct {
	def      *Definition
	logger   *slog.Logger
	recorder telemetry.Recorder
	ctx      context.Context
	onEvent  func(evt *events.Event)
	seed     map[string]any

	store  *property.Store
	sched  *scheduler.Scheduler
	target *events.Target
	realm  *realm.Realm

	attrs      map[string]string
	observed   map[string]bool
	attrProps  map[string]string
	reflecting map[string]bool

	initialized bool
	connected   bool
	declared    []*events.Delegation

	// renderCtx is the context of the running render cycle.
	renderCtx context.Context
}

// New creates an element for def. The element must be initialized before
// it is connected.
func New(def *Definition, opts ...Option) (*Element, error) {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.recorder == nil {
		o.recorder = telemetry.Nop
	}
	if o.ctx == nil {
		o.ctx = context.Background()
	}

	store, err := property.NewStore(def.Properties)
	if err != nil {
		return nil, err
	}

	logger := o.logger.With("tag", def.TagName)
	if o.id != "" {
		logger = logger.With("element", o.id)
	}

	e := &Element{
		def:        def,
		logger:     logger,
		recorder:   o.recorder,
		ctx:        o.ctx,
		onEvent:    o.onEvent,
		seed:       o.props,
		store:      store,
		target:     events.NewTarget(),
		attrs:      make(map[string]string),
		observed:   make(map[string]bool),
		attrProps:  make(map[string]string),
		reflecting: make(map[string]bool),
	}

	var realmOpts []realm.Option
	if o.hidPrefix != "" {
		realmOpts = append(realmOpts, realm.WithHIDPrefix(o.hidPrefix))
	}
	e.realm = realm.New(def.TagName, o.sink, realmOpts...)

	var schedOpts []scheduler.Option
	if o.maxPasses > 0 {
		schedOpts = append(schedOpts, scheduler.WithMaxPasses(o.maxPasses))
	}
	e.sched = scheduler.New(e.renderCycle, schedOpts...)

	for _, name := range def.ObservedAttributeNames() {
		e.observed[name] = true
	}
	for _, spec := range def.Properties {
		if spec.Attribute != "" {
			e.attrProps[spec.Attribute] = spec.Name
		}
	}
	store.SetHook(e.propertyChanged)

	return e, nil
}

// Definition returns the element's type description.
func (e *Element) Definition() *Definition { return e.def }

// Tag returns the element's tag name.
func (e *Element) Tag() string { return e.def.TagName }

// Logger returns the element's logger.
func (e *Element) Logger() *slog.Logger { return e.logger }

// Store returns the element's property store.
func (e *Element) Store() *property.Store { return e.store }

// Realm returns the element's rendering realm.
func (e *Element) Realm() *realm.Realm { return e.realm }

// Listeners returns the element's listener target.
func (e *Element) Listeners() *events.Target { return e.target }

// Stats returns the scheduler counters.
func (e *Element) Stats() scheduler.Stats { return e.sched.Stats() }

// IsConnected reports whether the element is live.
func (e *Element) IsConnected() bool { return e.connected }

// IsInitialized reports whether Initialize ran.
func (e *Element) IsInitialized() bool { return e.initialized }

// Context returns the context of the running render cycle, or the
// element's base context outside a cycle.
func (e *Element) Context() context.Context {
	if e.renderCtx != nil {
		return e.renderCtx
	}
	return e.ctx
}

// HTML renders the element and its current content.
func (e *Element) HTML(includeHIDs bool) string {
	return e.realm.HTML(includeHIDs)
}

// ---------------------------------------------------------------------------
// Lifecycle
// ---------------------------------------------------------------------------

// Initialize seeds property values and runs the Initialize slot.
// It must run exactly once, before the first connect.
func (e *Element) Initialize() error {
	if e.initialized {
		return errors.New(errors.CodeLifecycle).
			WithSubject(e.def.TagName).
			WithDetail("Initialize was called more than once.")
	}

	keys := make([]string, 0, len(e.seed))
	for k := range e.seed {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if err := e.store.Seed(k, e.seed[k]); err != nil {
			return err
		}
	}
	e.seed = nil
	e.initialized = true

	if e.def.Initialize != nil {
		if err := e.def.Initialize(e); err != nil {
			return err
		}
	}
	e.logger.Debug("element initialized")
	return nil
}

// ConnectedCallback marks the element live, delegates the declared
// listeners, runs the Connected slot and renders if nothing was rendered
// yet. Connecting a live element does nothing.
func (e *Element) ConnectedCallback() error {
	if !e.initialized {
		return errors.New(errors.CodeLifecycle).
			WithSubject(e.def.TagName).
			WithDetail("The element was connected before Initialize.")
	}
	if e.connected {
		return nil
	}
	e.connected = true

	for _, l := range e.def.Listeners {
		d, err := e.DelegateEventListener(l.Event, l.Selector, l.Handler, l.Options)
		if err != nil {
			return err
		}
		e.declared = append(e.declared, d)
	}

	if e.def.Connected != nil {
		if err := e.def.Connected(e); err != nil {
			return err
		}
	}
	e.logger.Debug("element connected")

	if !e.realm.Rendered() {
		return e.ForceUpdate()
	}
	return nil
}

// DisconnectedCallback marks the element not live and releases every
// observer and listener before running the Disconnected slot.
func (e *Element) DisconnectedCallback() {
	if !e.connected {
		return
	}
	e.connected = false
	e.store.Reset()
	e.target.Release()
	e.declared = nil

	if e.def.Disconnected != nil {
		e.def.Disconnected(e)
	}
	e.logger.Debug("element disconnected")
}

// ---------------------------------------------------------------------------
// Properties
// ---------------------------------------------------------------------------

// Get returns the current value of a declared property.
func (e *Element) Get(name string) (any, error) {
	return e.store.Get(name)
}

// Set writes a declared property and reports whether it changed.
func (e *Element) Set(name string, value any) (bool, error) {
	return e.store.Set(name, value)
}

// Observe registers o for changes to name.
func (e *Element) Observe(name string, o *property.Observer) error {
	return e.store.Observe(name, o)
}

// Unobserve removes o from name.
func (e *Element) Unobserve(name string, o *property.Observer) {
	e.store.Unobserve(name, o)
}

// Assign writes several properties with a single render.
// Every name is checked first; nothing is written if one is undeclared
// or a value cannot be converted to its property's type.
func (e *Element) Assign(props map[string]any) error {
	keys := make([]string, 0, len(props))
	for k := range props {
		spec, ok := e.store.Spec(k)
		if !ok {
			return errors.New(errors.CodeInvalidProperty).WithSubject(k)
		}
		if spec.Type != property.Any {
			if _, err := spec.Coerce(props[k]); err != nil {
				return err
			}
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	e.CollectUpdatesStart()
	var setErr error
	for _, k := range keys {
		if _, err := e.store.Set(k, props[k]); err != nil {
			setErr = err
			break
		}
	}
	if _, err := e.CollectUpdatesEnd(); err != nil && setErr == nil {
		return err
	}
	return setErr
}

// propertyChanged runs for every effective property change, after the
// property's observers.
func (e *Element) propertyChanged(c property.Change) error {
	spec, _ := e.store.Spec(c.Name)

	if e.def.PropertyChanged != nil {
		if err := e.def.PropertyChanged(e, c); err != nil {
			return err
		}
	}
	if spec.State && e.def.StateChanged != nil {
		if err := e.def.StateChanged(e, c); err != nil {
			return err
		}
	}
	if spec.Reflect && spec.Attribute != "" {
		if err := e.reflect(spec, c.New); err != nil {
			return err
		}
	}

	// Vetoed changes are dropped here, so they never become pending
	// inside a collect.
	if !e.ShouldUpdate(c) {
		return nil
	}
	if e.sched.Depth() > 0 || e.sched.Rendering() {
		e.recorder.UpdateDeferred(e.def.TagName)
	}
	_, err := e.sched.RequestUpdate(nil)
	return err
}

// reflect writes a property value back to its attribute. The resulting
// attribute change does not write the property again.
func (e *Element) reflect(spec property.Spec, value any) error {
	e.reflecting[spec.Attribute] = true
	defer delete(e.reflecting, spec.Attribute)

	attr := spec.ToAttr(value)
	if attr == nil {
		return e.RemoveAttribute(spec.Attribute)
	}
	return e.SetAttribute(spec.Attribute, *attr)
}

// ---------------------------------------------------------------------------
// Attributes
// ---------------------------------------------------------------------------

// GetAttribute returns the value of a host attribute.
func (e *Element) GetAttribute(name string) (string, bool) {
	v, ok := e.attrs[name]
	return v, ok
}

// HasAttribute reports whether the host carries the attribute.
func (e *Element) HasAttribute(name string) bool {
	_, ok := e.attrs[name]
	return ok
}

// Attributes returns a copy of the host attributes.
func (e *Element) Attributes() map[string]string {
	out := make(map[string]string, len(e.attrs))
	for k, v := range e.attrs {
		out[k] = v
	}
	return out
}

// SetAttribute sets a host attribute. Observed attributes run
// AttributeChangedCallback when the value changes.
func (e *Element) SetAttribute(name, value string) error {
	prev, had := e.attrs[name]
	if had && prev == value {
		return nil
	}
	e.attrs[name] = value
	if err := e.realm.SetHostAttr(name, &value); err != nil {
		return err
	}
	var old *string
	if had {
		old = &prev
	}
	return e.attributeChanged(name, old, &value)
}

// RemoveAttribute removes a host attribute.
func (e *Element) RemoveAttribute(name string) error {
	prev, had := e.attrs[name]
	if !had {
		return nil
	}
	delete(e.attrs, name)
	if err := e.realm.SetHostAttr(name, nil); err != nil {
		return err
	}
	return e.attributeChanged(name, &prev, nil)
}

func (e *Element) attributeChanged(name string, old, value *string) error {
	if !e.observed[name] {
		return nil
	}
	return e.AttributeChangedCallback(name, old, value, "")
}

// ObservedAttributes returns the attributes that trigger
// AttributeChangedCallback.
func (e *Element) ObservedAttributes() []string {
	return e.def.ObservedAttributeNames()
}

// AttributeChangedCallback handles a change of an observed attribute.
// A nil value means the attribute was removed. Attributes backing a
// property are converted and written to it; the AttributeChanged slot
// runs for every observed attribute. Unobserved names are ignored.
func (e *Element) AttributeChangedCallback(name string, oldValue, newValue *string, namespace string) error {
	if !e.observed[name] {
		return nil
	}
	if prop, ok := e.attrProps[name]; ok && !e.reflecting[name] {
		spec, _ := e.store.Spec(prop)
		v, err := spec.FromAttr(newValue)
		if err != nil {
			return err
		}
		if _, err := e.store.Set(prop, v); err != nil {
			return err
		}
	}
	if e.def.AttributeChanged != nil {
		return e.def.AttributeChanged(e, name, oldValue, newValue, namespace)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Updates
// ---------------------------------------------------------------------------

// ShouldUpdate consults the ShouldUpdate slot. The zero Change stands for
// an explicit update request.
func (e *Element) ShouldUpdate(c property.Change) bool {
	if e.def.ShouldUpdate == nil {
		return true
	}
	return e.def.ShouldUpdate(e, c)
}

// RequestUpdate asks for a render cycle and reports whether one ran.
// While collecting the request is deferred and false is returned.
func (e *Element) RequestUpdate() (bool, error) {
	if e.sched.Depth() > 0 || e.sched.Rendering() {
		e.recorder.UpdateDeferred(e.def.TagName)
	}
	return e.sched.RequestUpdate(func() bool {
		return e.ShouldUpdate(property.Change{})
	})
}

// ForceUpdate runs a render cycle regardless of ShouldUpdate and clears
// any pending update.
func (e *Element) ForceUpdate() error {
	return e.sched.ForceUpdate()
}

// CollectUpdatesStart begins (or nests) a batch of updates.
func (e *Element) CollectUpdatesStart() {
	e.sched.CollectUpdatesStart()
}

// CollectUpdatesEnd ends one batch level. The outermost end renders once
// if any update was requested during the batch.
func (e *Element) CollectUpdatesEnd() (bool, error) {
	ran, err := e.sched.CollectUpdatesEnd()
	if errors.IsFatal(err) {
		e.logger.Error("unbalanced update collection", "error", err)
	}
	return ran, err
}

// renderCycle runs Render, reconciles the result and runs Updated.
func (e *Element) renderCycle() error {
	ctx, finish := e.recorder.Render(e.ctx, e.def.TagName)
	e.renderCtx = ctx
	defer func() { e.renderCtx = nil }()

	patches, err := e.render()
	finish(patches, err)
	if err != nil {
		e.logger.Warn("render cycle failed", "error", err)
		return err
	}
	e.logger.Debug("render cycle", "patches", patches)
	return nil
}

func (e *Element) render() (int, error) {
	var tree *vdom.VNode
	if e.def.Render != nil {
		var err error
		if tree, err = e.def.Render(e); err != nil {
			return 0, errors.FromError(err, errors.CodeRenderFailed)
		}
	}

	patches, err := e.realm.Reconcile(tree)
	if err != nil {
		return 0, err
	}

	if e.def.Updated != nil {
		if err := e.def.Updated(e); err != nil {
			return len(patches), errors.FromError(err, errors.CodeRenderFailed)
		}
	}
	return len(patches), nil
}
