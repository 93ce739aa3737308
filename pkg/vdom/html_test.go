package vdom

import (
	"strings"
	"testing"
)

func TestParseHTMLSingleRoot(t *testing.T) {
	node, err := ParseHTML(`<div class="card" key="k1">
		<h1>Title</h1>
		<!-- dropped -->
		<button data-action="inc" disabled>+</button>
	</div>`)
	if err != nil {
		t.Fatalf("ParseHTML() error = %v", err)
	}

	if node.Tag != "div" || node.Key != "k1" {
		t.Fatalf("root = %+v", node)
	}
	if len(node.Children) != 2 {
		t.Fatalf("expected whitespace and comments dropped, got %d children", len(node.Children))
	}
	btn := node.Children[1]
	if v, _ := btn.Attr("data-action"); v != "inc" {
		t.Errorf("data-action = %q", v)
	}
	if _, ok := btn.Attr("disabled"); !ok {
		t.Error("bare attribute should be present")
	}
}

func TestParseHTMLMultipleRoots(t *testing.T) {
	node, err := ParseHTML(`<span>a</span><span>b</span>`)
	if err != nil {
		t.Fatal(err)
	}
	if node.Kind != KindFragment || len(node.Children) != 2 {
		t.Errorf("node = %+v", node)
	}
}

func TestRenderHTML(t *testing.T) {
	tree := H("ul", Class("todo"), A("hidden", false),
		H("li", A("data-id", 1), "buy <milk>"),
		H("input", A("checked", true)),
		Raw("<b>raw</b>"),
	)
	AssignMissingHIDs(tree, NewHIDGenerator())

	got := HTMLString(tree, RenderOptions{})
	want := `<ul class="todo"><li data-id="1">buy &lt;milk&gt;</li><input checked=""/><b>raw</b></ul>`
	if got != want {
		t.Errorf("HTMLString() =\n%s\nwant\n%s", got, want)
	}

	hyd := HTMLString(tree, RenderOptions{IncludeHIDs: true})
	if !strings.Contains(hyd, `data-hid="h1"`) {
		t.Errorf("hydratable output missing HID: %s", hyd)
	}
}

func TestRenderHTMLFragmentAndNil(t *testing.T) {
	if got := HTMLString(nil, RenderOptions{}); got != "" {
		t.Errorf("nil renders as %q", got)
	}
	got := HTMLString(Fragment(Text("a"), H("br")), RenderOptions{})
	if got != "a<br/>" {
		t.Errorf("fragment = %q", got)
	}
}

func TestParseRenderRoundTrip(t *testing.T) {
	src := `<section id="s"><p class="x">hello</p></section>`
	node, err := ParseHTML(src)
	if err != nil {
		t.Fatal(err)
	}
	if got := HTMLString(node, RenderOptions{}); got != src {
		t.Errorf("round trip = %q, want %q", got, src)
	}
}
