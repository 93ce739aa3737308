package events

import "github.com/dna-dev/dna/pkg/vdom"

// Event is a dispatched event.
type Event struct {
	// Type is the event name, such as "click".
	Type string

	// Target is the node the event was dispatched at.
	Target *vdom.VNode

	// CurrentTarget is the node whose listeners are currently running.
	CurrentTarget *vdom.VNode

	// Path lists the nodes from Target up to the host, inclusive.
	Path []*vdom.VNode

	// Detail carries event-specific data.
	Detail any

	Bubbles    bool
	Cancelable bool
	Composed   bool

	defaultPrevented bool
	stopped          bool
	stoppedNow       bool
	passive          bool
}

// New creates a bubbling, cancelable event.
func New(typ string, detail any) *Event {
	return &Event{
		Type:       typ,
		Detail:     detail,
		Bubbles:    true,
		Cancelable: true,
	}
}

// PreventDefault marks the event as handled. It has no effect on events
// that are not cancelable or from passive listeners.
func (e *Event) PreventDefault() {
	if e.Cancelable && !e.passive {
		e.defaultPrevented = true
	}
}

// DefaultPrevented reports whether PreventDefault took effect.
func (e *Event) DefaultPrevented() bool {
	return e.defaultPrevented
}

// StopPropagation stops the walk after the current node's listeners.
func (e *Event) StopPropagation() {
	e.stopped = true
}

// StopImmediatePropagation also skips the remaining listeners on the
// current node.
func (e *Event) StopImmediatePropagation() {
	e.stopped = true
	e.stoppedNow = true
}

// PropagationStopped reports whether propagation was stopped.
func (e *Event) PropagationStopped() bool {
	return e.stopped
}

// Options configure a listener.
type Options struct {
	// Once removes the listener before its first invocation.
	Once bool

	// Passive listeners cannot prevent the default action.
	Passive bool
}
