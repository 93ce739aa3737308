package dnatest

import (
	"context"
	"strconv"
	"testing"

	"github.com/dna-dev/dna/pkg/component"
	"github.com/dna-dev/dna/pkg/events"
	"github.com/dna-dev/dna/pkg/property"
	"github.com/dna-dev/dna/pkg/vdom"
)

func toggleDefinition() *component.Definition {
	return &component.Definition{
		TagName: "x-toggle",
		Properties: []property.Spec{
			{Name: "on", Type: property.Bool, Attribute: "on", Reflect: true},
		},
		Listeners: []component.ListenerSpec{{
			Event:    "click",
			Selector: "ul > li button",
			Handler: func(ctx context.Context, e *component.Element, evt *events.Event, node *vdom.VNode) (any, error) {
				on, _ := property.Value[bool](e.Store(), "on")
				if _, err := e.Set("on", !on); err != nil {
					return nil, err
				}
				_, err := e.DispatchEvent(ctx, "toggle", !on)
				return nil, err
			},
		}},
		Render: func(e *component.Element) (*vdom.VNode, error) {
			on, _ := property.Value[bool](e.Store(), "on")
			return vdom.H("ul",
				vdom.H("li", vdom.H("button", vdom.Class("flip"), strconv.FormatBool(on))),
				vdom.H("li", vdom.H("span", "static")),
			), nil
		},
	}
}

func TestMountRendersAndRecords(t *testing.T) {
	h := Mount(t, toggleDefinition())

	h.ExpectContains("<button class=\"flip\">false</button>")
	h.ExpectElement("ul > li > button.flip")
	if len(h.Sink.Batches) != 0 {
		t.Errorf("first render recorded %d batches; the sink is attached after it", len(h.Sink.Batches))
	}
	if n := len(h.FindAll("li")); n != 2 {
		t.Errorf("FindAll(li) = %d, want 2", n)
	}
	if h.Find("x-toggle") != nil {
		t.Error("Find matched the host")
	}
}

func TestFireDrivesListeners(t *testing.T) {
	h := Mount(t, toggleDefinition())

	if err := h.Fire("click", "button.flip", nil); err != nil {
		t.Fatalf("Fire() error = %v", err)
	}
	h.ExpectContains(">true</button>")
	h.ExpectNotContains(">false</button>")
	h.ExpectAttribute("on", "")
	if evt := h.ExpectEmitted("toggle"); evt != nil && evt.Detail != true {
		t.Errorf("toggle detail = %v, want true", evt.Detail)
	}
	if len(h.Sink.Patches()) == 0 {
		t.Error("no patches recorded")
	}
}

func TestRenderToString(t *testing.T) {
	if got := RenderToString(vdom.H("p", "hi")); got != "<p>hi</p>" {
		t.Errorf("RenderToString() = %q", got)
	}
	if got := truncate("abcdef", 3); got != "abc..." {
		t.Errorf("truncate() = %q", got)
	}
}
