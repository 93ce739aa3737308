package dnatest

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/dna-dev/dna/pkg/component"
	"github.com/dna-dev/dna/pkg/events"
	"github.com/dna-dev/dna/pkg/realm"
	"github.com/dna-dev/dna/pkg/vdom"
)

// Harness hosts one live element for a test.
type Harness struct {
	t *testing.T

	// Element is the mounted element.
	Element *component.Element

	// Sink records every patch batch after the first render.
	Sink *realm.Recorder

	// Emitted lists every event dispatched on the host, in order.
	Emitted []*events.Event
}

// Mount creates, initializes and connects an element for def. Logging is
// discarded unless opts set a logger.
func Mount(t *testing.T, def *component.Definition, opts ...component.Option) *Harness {
	t.Helper()
	h := &Harness{t: t, Sink: &realm.Recorder{}}

	all := []component.Option{
		component.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		component.WithEventSink(func(evt *events.Event) { h.Emitted = append(h.Emitted, evt) }),
	}
	all = append(all, opts...)

	el, err := component.New(def, all...)
	if err != nil {
		t.Fatalf("dnatest: New(%s) error = %v", def.TagName, err)
	}
	if err := el.Initialize(); err != nil {
		t.Fatalf("dnatest: Initialize() error = %v", err)
	}
	if err := el.ConnectedCallback(); err != nil {
		t.Fatalf("dnatest: ConnectedCallback() error = %v", err)
	}
	el.Realm().SetSink(h.Sink)
	h.Element = el
	t.Cleanup(el.DisconnectedCallback)
	return h
}

// HTML returns the rendered host without hydration IDs.
func (h *Harness) HTML() string {
	return h.Element.HTML(false)
}

// Find returns the first rendered node matching selector, or nil.
// The host itself is never matched.
func (h *Harness) Find(selector string) *vdom.VNode {
	h.t.Helper()
	all := h.FindAll(selector)
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

// FindAll returns every rendered node matching selector in document order.
func (h *Harness) FindAll(selector string) []*vdom.VNode {
	h.t.Helper()
	sel, err := vdom.CompileSelector(selector)
	if err != nil {
		h.t.Fatalf("dnatest: bad selector %q: %v", selector, err)
	}

	var out []*vdom.VNode
	var visit func(n *vdom.VNode, ancestors []*vdom.VNode)
	visit = func(n *vdom.VNode, ancestors []*vdom.VNode) {
		if len(ancestors) > 0 && sel.Match(n, ancestors) {
			out = append(out, n)
		}
		next := append([]*vdom.VNode{n}, ancestors...)
		for _, c := range n.Children {
			visit(c, next)
		}
	}
	visit(h.Element.Realm().Tree(), nil)
	return out
}

// Fire dispatches an event on the first node matching selector, as a
// client event frame would. It fails the test if nothing matches.
func (h *Harness) Fire(typ, selector string, detail any) error {
	h.t.Helper()
	node := h.Find(selector)
	if node == nil {
		h.t.Fatalf("dnatest: no node matches %q in:\n%s", selector, truncate(h.HTML(), 500))
	}
	return h.Element.HandleEvent(context.Background(), typ, node.HID, detail)
}

// ExpectContains asserts that the rendered output contains expected.
func (h *Harness) ExpectContains(expected string) {
	h.t.Helper()
	html := h.HTML()
	if !strings.Contains(html, expected) {
		h.t.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that the rendered output does not contain unexpected.
func (h *Harness) ExpectNotContains(unexpected string) {
	h.t.Helper()
	html := h.HTML()
	if strings.Contains(html, unexpected) {
		h.t.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that a rendered node matches selector.
func (h *Harness) ExpectElement(selector string) {
	h.t.Helper()
	if h.Find(selector) == nil {
		h.t.Errorf("expected an element matching %q, got:\n%s", selector, truncate(h.HTML(), 500))
	}
}

// ExpectAttribute asserts that the host carries attr with value.
func (h *Harness) ExpectAttribute(attr, value string) {
	h.t.Helper()
	got, ok := h.Element.GetAttribute(attr)
	if !ok || got != value {
		h.t.Errorf("expected host attribute %s=%q, got %q (present %v)", attr, value, got, ok)
	}
}

// ExpectEmitted asserts that the last host event has type typ and
// returns it.
func (h *Harness) ExpectEmitted(typ string) *events.Event {
	h.t.Helper()
	if len(h.Emitted) == 0 {
		h.t.Errorf("expected a %q event, none emitted", typ)
		return nil
	}
	last := h.Emitted[len(h.Emitted)-1]
	if last.Type != typ {
		h.t.Errorf("expected a %q event, last emitted %q", typ, last.Type)
	}
	return last
}

// RenderToString renders a tree to HTML without hydration IDs.
func RenderToString(node *vdom.VNode) string {
	return vdom.HTMLString(node, vdom.RenderOptions{})
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
