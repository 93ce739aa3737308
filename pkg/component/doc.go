// Package component implements the element controller.
//
// A Definition describes one element type: its tag, its properties, the
// listeners it delegates and a set of optional callback slots. An Element
// is one live instance of a Definition. It composes a property store, an
// update scheduler, a listener target and a rendering realm, and drives
// the lifecycle:
//
//	initialize → connect → attribute/property change → shouldUpdate →
//	render → reconcile → updated
//
// Property writes request an update. Writes made between
// CollectUpdatesStart and the matching CollectUpdatesEnd are coalesced into
// a single render cycle; Assign does this for a map of properties.
//
//	counter := &component.Definition{
//	    TagName:    "x-counter",
//	    Properties: []property.Spec{{Name: "count", Type: property.Int, Attribute: "count"}},
//	    Render: func(e *component.Element) (*vdom.VNode, error) {
//	        n, _ := property.Value[int](e.Store(), "count")
//	        return vdom.H("span", vdom.Textf("%d", n)), nil
//	    },
//	}
//	el, _ := component.New(counter)
//	el.Initialize()
//	el.ConnectedCallback()
//	el.Assign(map[string]any{"count": 3}) // one render
//
// Elements are not safe for concurrent use. Every call on an element must
// come from the goroutine that owns it.
package component
