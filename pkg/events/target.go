package events

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/dna-dev/dna/internal/errors"
	"github.com/dna-dev/dna/pkg/vdom"
)

// Handler handles one event at one node. The returned value is collected
// by DispatchAsync and ignored by Dispatch.
type Handler func(ctx context.Context, evt *Event, node *vdom.VNode) (any, error)

// Delegation is the handle of one registered listener.
type Delegation struct {
	Event    string
	Selector string
	Options  Options

	selector *vdom.Selector
	handler  Handler
	removed  bool
}

// Active reports whether the delegation is still registered.
func (d *Delegation) Active() bool {
	return d != nil && !d.removed
}

// matches reports whether the listener applies to path[i].
// An empty selector matches only the host, at the end of the path.
// Non-empty selectors match descendants of the host.
func (d *Delegation) matches(path []*vdom.VNode, i int) bool {
	last := len(path) - 1
	if d.selector == nil {
		return i == last
	}
	if i == last {
		return false
	}
	return d.selector.Match(path[i], path[i+1:])
}

// Target holds the listeners of one element.
type Target struct {
	listeners []*Delegation
}

// NewTarget creates an empty listener set.
func NewTarget() *Target {
	return &Target{}
}

// Delegate registers handler for event on nodes matching selector.
// An empty selector registers a listener on the host itself.
func (t *Target) Delegate(event, selector string, handler Handler, opts Options) (*Delegation, error) {
	d := &Delegation{
		Event:    event,
		Selector: selector,
		Options:  opts,
		handler:  handler,
	}
	if selector != "" {
		sel, err := vdom.CompileSelector(selector)
		if err != nil {
			return nil, errors.New(errors.CodeInvalidSelector).WithSubject(selector).Wrap(err)
		}
		d.selector = sel
	}
	t.listeners = append(t.listeners, d)
	return d, nil
}

// Undelegate removes d. Removing an already removed delegation is a no-op.
func (t *Target) Undelegate(d *Delegation) {
	if d == nil || d.removed {
		return
	}
	d.removed = true
	for i, l := range t.listeners {
		if l == d {
			t.listeners = append(t.listeners[:i:i], t.listeners[i+1:]...)
			return
		}
	}
}

// Release removes every listener.
func (t *Target) Release() {
	for _, l := range t.listeners {
		l.removed = true
	}
	t.listeners = nil
}

// Len returns the number of registered listeners.
func (t *Target) Len() int {
	return len(t.listeners)
}

// Listeners returns the registered delegations in registration order.
func (t *Target) Listeners() []*Delegation {
	out := make([]*Delegation, len(t.listeners))
	copy(out, t.listeners)
	return out
}

// Dispatch runs every listener matching evt along evt.Path.
// Listener failures are joined into one listener error after all
// listeners ran.
func (t *Target) Dispatch(ctx context.Context, evt *Event) error {
	var errs error
	t.walk(ctx, evt, func(_ any, err error) {
		errs = multierr.Append(errs, err)
	})
	return listenerError(evt, errs)
}

// walk visits evt.Path and reports every invocation result to collect.
func (t *Target) walk(ctx context.Context, evt *Event, collect func(any, error)) {
	if evt == nil || len(evt.Path) == 0 {
		return
	}
	if evt.Target == nil {
		evt.Target = evt.Path[0]
	}

	// Listeners added during dispatch do not run for this event.
	snapshot := t.Listeners()

	for i, node := range evt.Path {
		if i > 0 && !evt.Bubbles {
			break
		}
		evt.CurrentTarget = node
		for _, d := range snapshot {
			if d.removed || d.Event != evt.Type || !d.matches(evt.Path, i) {
				continue
			}
			if d.Options.Once {
				t.Undelegate(d)
			}
			collect(invoke(ctx, d, evt, node))
			if evt.stoppedNow {
				break
			}
		}
		if evt.PropagationStopped() {
			break
		}
	}
	evt.CurrentTarget = nil
}

// invoke runs one handler, converting a panic into an error.
func invoke(ctx context.Context, d *Delegation, evt *Event, node *vdom.VNode) (result any, err error) {
	evt.passive = d.Options.Passive
	defer func() {
		evt.passive = false
		if r := recover(); r != nil {
			err = fmt.Errorf("listener for %q panicked: %v", evt.Type, r)
		}
	}()
	if d.handler == nil {
		return nil, nil
	}
	return d.handler(ctx, evt, node)
}

func listenerError(evt *Event, errs error) error {
	if errs == nil {
		return nil
	}
	n := len(multierr.Errors(errs))
	return errors.New(errors.CodeListenerFailed).
		WithSubject(evt.Type).
		WithDetail(fmt.Sprintf("%d listener(s) failed.", n)).
		Wrap(errs)
}
