package component

import (
	"context"

	"github.com/dna-dev/dna/pkg/events"
	"github.com/dna-dev/dna/pkg/property"
	"github.com/dna-dev/dna/pkg/vdom"
)

// ListenerFunc handles an event for an element. node is the rendered node
// the listener matched.
type ListenerFunc func(ctx context.Context, e *Element, evt *events.Event, node *vdom.VNode) (any, error)

// ListenerSpec declares a listener delegated on every connect.
type ListenerSpec struct {
	Event    string
	Selector string
	Handler  ListenerFunc
	Options  events.Options
}

// Definition is the static description of an element type.
// Every callback slot is optional.
type Definition struct {
	// TagName is the custom element name, such as "x-counter".
	TagName string

	// Extends names the builtin element this type customizes.
	// Empty means an autonomous custom element.
	Extends string

	// Properties declares the element's properties.
	Properties []property.Spec

	// ObservedAttributes lists attributes observed in addition to those
	// backing properties.
	ObservedAttributes []string

	// Listeners are delegated when the element connects.
	Listeners []ListenerSpec

	Initialize       func(e *Element) error
	Connected        func(e *Element) error
	Disconnected     func(e *Element)
	AttributeChanged func(e *Element, name string, oldValue, newValue *string, namespace string) error
	PropertyChanged  func(e *Element, c property.Change) error
	StateChanged     func(e *Element, c property.Change) error

	// ShouldUpdate vetoes updates. Nil approves every update.
	ShouldUpdate func(e *Element, c property.Change) bool

	// Render returns the element's content. A nil tree means no change.
	Render func(e *Element) (*vdom.VNode, error)

	Updated func(e *Element) error
}

// ObservedAttributeNames returns every observed attribute: property
// attributes in declaration order, then ObservedAttributes. Duplicates are
// dropped.
func (d *Definition) ObservedAttributeNames() []string {
	seen := make(map[string]bool)
	var names []string
	add := func(name string) {
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	for _, spec := range d.Properties {
		add(spec.Attribute)
	}
	for _, name := range d.ObservedAttributes {
		add(name)
	}
	return names
}

// PropertyNames returns the declared property names in declaration order.
func (d *Definition) PropertyNames() []string {
	names := make([]string, len(d.Properties))
	for i, spec := range d.Properties {
		names[i] = spec.Name
	}
	return names
}

// BaseTag returns the builtin base element: Extends, or TagName for
// autonomous elements.
func (d *Definition) BaseTag() string {
	if d.Extends != "" {
		return d.Extends
	}
	return d.TagName
}
