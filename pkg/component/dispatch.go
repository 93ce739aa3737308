package component

import (
	"context"
	"time"

	"github.com/dna-dev/dna/internal/errors"
	"github.com/dna-dev/dna/pkg/events"
	"github.com/dna-dev/dna/pkg/vdom"
)

// EventInit controls the flags of a dispatched event.
type EventInit struct {
	Bubbles    bool
	Cancelable bool
	Composed   bool
}

// DefaultEventInit is used when no EventInit is given.
var DefaultEventInit = EventInit{Bubbles: true, Cancelable: true}

func (e *Element) newHostEvent(typ string, detail any, init []EventInit) *events.Event {
	opts := DefaultEventInit
	if len(init) > 0 {
		opts = init[0]
	}
	evt := events.New(typ, detail)
	evt.Bubbles = opts.Bubbles
	evt.Cancelable = opts.Cancelable
	evt.Composed = opts.Composed
	evt.Path = []*vdom.VNode{e.realm.Tree()}
	evt.Target = evt.Path[0]
	return evt
}

// DispatchEvent dispatches an event at the host element. It returns false
// if a listener prevented the default action.
func (e *Element) DispatchEvent(ctx context.Context, typ string, detail any, init ...EventInit) (bool, error) {
	evt := e.newHostEvent(typ, detail, init)
	start := time.Now()
	err := e.target.Dispatch(ctx, evt)
	e.recorder.Event(e.def.TagName, typ, time.Since(start), err)
	if e.onEvent != nil {
		e.onEvent(evt)
	}
	return !evt.DefaultPrevented(), err
}

// DispatchAsyncEvent dispatches an event at the host element and waits
// for every asynchronous listener result. Results keep invocation order.
func (e *Element) DispatchAsyncEvent(ctx context.Context, typ string, detail any, init ...EventInit) ([]any, error) {
	evt := e.newHostEvent(typ, detail, init)
	start := time.Now()
	results, err := e.target.DispatchAsync(ctx, evt)
	e.recorder.Event(e.def.TagName, typ, time.Since(start), err)
	if e.onEvent != nil {
		e.onEvent(evt)
	}
	return results, err
}

// HandleEvent dispatches an event that happened on the rendered node with
// the given hydration ID. It bubbles up to the host through every
// matching delegated listener.
func (e *Element) HandleEvent(ctx context.Context, typ, hid string, detail any) error {
	path := e.realm.PathTo(hid)
	if len(path) == 0 {
		return errors.New(errors.CodeMalformedFrame).
			WithSubject(hid).
			WithDetail("The event targets a node that is not rendered by this element.")
	}
	evt := events.New(typ, detail)
	evt.Path = path
	evt.Target = path[0]

	start := time.Now()
	err := e.target.Dispatch(ctx, evt)
	e.recorder.Event(e.def.TagName, typ, time.Since(start), err)
	if err != nil {
		e.logger.Warn("event listener failed", "event", typ, "hid", hid, "error", err)
	}
	return err
}

// DelegateEventListener registers fn for events on rendered descendants
// matching selector. An empty selector listens on the host itself.
func (e *Element) DelegateEventListener(event, selector string, fn ListenerFunc, opts events.Options) (*events.Delegation, error) {
	var handler events.Handler
	if fn != nil {
		handler = func(ctx context.Context, evt *events.Event, node *vdom.VNode) (any, error) {
			return fn(ctx, e, evt, node)
		}
	}
	return e.target.Delegate(event, selector, handler, opts)
}

// UndelegateEventListener removes a delegation.
func (e *Element) UndelegateEventListener(d *events.Delegation) {
	e.target.Undelegate(d)
}

// AddEventListener registers fn for events dispatched on the host.
func (e *Element) AddEventListener(event string, fn ListenerFunc, opts events.Options) (*events.Delegation, error) {
	return e.DelegateEventListener(event, "", fn, opts)
}

// RemoveEventListener removes a host listener.
func (e *Element) RemoveEventListener(d *events.Delegation) {
	e.target.Undelegate(d)
}
