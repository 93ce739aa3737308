package main

import (
	"context"
	"fmt"
	"html"
	"slices"
	"strconv"

	"github.com/dna-dev/dna/pkg/component"
	"github.com/dna-dev/dna/pkg/events"
	"github.com/dna-dev/dna/pkg/property"
	"github.com/dna-dev/dna/pkg/registry"
	"github.com/dna-dev/dna/pkg/vdom"
)

// newRegistry returns a registry holding the bundled elements.
func newRegistry(opts ...registry.Option) (*registry.Registry, error) {
	reg := registry.New(opts...)
	for _, def := range []*component.Definition{counterElement(), todoElement(), badgeElement()} {
		if err := reg.Define(def); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func counterElement() *component.Definition {
	step := func(dir int) component.ListenerFunc {
		return func(ctx context.Context, e *component.Element, evt *events.Event, node *vdom.VNode) (any, error) {
			n, _ := property.Value[int](e.Store(), "count")
			by, _ := property.Value[int](e.Store(), "step")
			n += dir * by
			if _, err := e.Set("count", n); err != nil {
				return nil, err
			}
			_, err := e.DispatchEvent(ctx, "change", n)
			return nil, err
		}
	}

	return &component.Definition{
		TagName: "x-counter",
		Properties: []property.Spec{
			{Name: "count", Type: property.Int, Attribute: "count", Reflect: true},
			{Name: "step", Type: property.Int, Attribute: "step", Default: 1},
			{Name: "label", Type: property.String, Attribute: "label", Default: "Count"},
		},
		Listeners: []component.ListenerSpec{
			{Event: "click", Selector: "button.dec", Handler: step(-1)},
			{Event: "click", Selector: "button.inc", Handler: step(+1)},
		},
		Render: func(e *component.Element) (*vdom.VNode, error) {
			n, _ := property.Value[int](e.Store(), "count")
			label, _ := property.Value[string](e.Store(), "label")
			return vdom.H("div", vdom.Class("counter"),
				vdom.H("span", vdom.Class("label"), label),
				vdom.H("button", vdom.Class("dec"), "-"),
				vdom.H("output", strconv.Itoa(n)),
				vdom.H("button", vdom.Class("inc"), "+"),
			), nil
		},
	}
}

func todoElement() *component.Definition {
	items := func(e *component.Element) []string {
		v, _ := e.Get("items")
		list, _ := v.([]string)
		return list
	}

	return &component.Definition{
		TagName: "x-todo",
		Properties: []property.Spec{
			{Name: "title", Type: property.String, Attribute: "title", Default: "Todo"},
			{Name: "items", State: true},
			{Name: "draft", Type: property.String, State: true},
		},
		Listeners: []component.ListenerSpec{
			{
				Event:    "input",
				Selector: "input.draft",
				Handler: func(ctx context.Context, e *component.Element, evt *events.Event, node *vdom.VNode) (any, error) {
					_, err := e.Set("draft", detailValue(evt.Detail))
					return nil, err
				},
			},
			{
				Event:    "submit",
				Selector: "form",
				Handler: func(ctx context.Context, e *component.Element, evt *events.Event, node *vdom.VNode) (any, error) {
					evt.PreventDefault()
					draft, _ := property.Value[string](e.Store(), "draft")
					if draft == "" {
						return nil, nil
					}
					next := append(slices.Clone(items(e)), draft)

					if err := e.Assign(map[string]any{"items": next, "draft": ""}); err != nil {
						return nil, err
					}
					_, err := e.DispatchEvent(ctx, "added", draft)
					return nil, err
				},
			},
			{
				Event:    "click",
				Selector: "button.remove",
				Handler: func(ctx context.Context, e *component.Element, evt *events.Event, node *vdom.VNode) (any, error) {
					raw, _ := node.Attr("data-index")
					i, err := strconv.Atoi(raw)
					list := items(e)
					if err != nil || i < 0 || i >= len(list) {
						return nil, fmt.Errorf("remove: bad index %q", raw)
					}
					_, err = e.Set("items", slices.Delete(slices.Clone(list), i, i+1))
					return nil, err
				},
			},
		},
		Render: func(e *component.Element) (*vdom.VNode, error) {
			title, _ := property.Value[string](e.Store(), "title")
			draft, _ := property.Value[string](e.Store(), "draft")
			list := items(e)
			return vdom.Fragment(
				vdom.H("h2", title),
				vdom.H("form", vdom.Class("add"),
					vdom.H("input", vdom.Class("draft"), vdom.A("value", draft)),
					vdom.H("button", vdom.A("type", "submit"), "Add"),
				),
				vdom.H("ul", vdom.Range(list, func(item string, i int) *vdom.VNode {
					return vdom.H("li", vdom.Key(i),
						vdom.H("span", item),
						vdom.H("button", vdom.Class("remove"), vdom.Data("index", strconv.Itoa(i)), "x"),
					)
				})),
			), nil
		},
	}
}

func badgeElement() *component.Definition {
	return &component.Definition{
		TagName: "x-badge",
		Extends: "span",
		Properties: []property.Spec{
			{Name: "text", Type: property.String, Attribute: "text"},
			{Name: "tone", Type: property.String, Attribute: "tone", Default: "info"},
		},
		Render: func(e *component.Element) (*vdom.VNode, error) {
			text, _ := property.Value[string](e.Store(), "text")
			tone, _ := property.Value[string](e.Store(), "tone")
			return vdom.ParseHTML(fmt.Sprintf(`<span class="badge badge-%s">%s</span>`,
				html.EscapeString(tone), html.EscapeString(text)))
		},
	}
}

// detailValue reads the value of an input event detail, sent either as
// a bare string or as {"value": ...}.
func detailValue(detail any) string {
	switch d := detail.(type) {
	case string:
		return d
	case map[string]any:
		s, _ := d["value"].(string)
		return s
	}
	return ""
}
