package vdom

import "testing"

func TestVKindString(t *testing.T) {
	tests := []struct {
		kind VKind
		want string
	}{
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindFragment, "Fragment"},
		{KindRaw, "Raw"},
		{VKind(99), "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("VKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestH(t *testing.T) {
	node := H("ul", Class("list", "big"), ID("main"), nil,
		H("li", Key("a"), "first"),
		Fragment(H("li", Key("b"), "second"), H("li", Key("c"), "third")),
	)

	if node.Kind != KindElement || node.Tag != "ul" {
		t.Fatalf("node = %+v", node)
	}
	if v, _ := node.Attr("class"); v != "list big" {
		t.Errorf("class = %q", v)
	}
	if len(node.Children) != 3 {
		t.Fatalf("fragment children should be flattened, got %d children", len(node.Children))
	}
	if node.Children[1].Key != "b" {
		t.Errorf("Key = %q, want b", node.Children[1].Key)
	}
	if _, ok := node.Children[0].Props["key"]; ok {
		t.Error("key must not be stored as an attribute")
	}
	if node.Children[2].Children[0].Text != "third" {
		t.Errorf("text child = %+v", node.Children[2].Children[0])
	}
}

func TestHVoidElementDropsChildren(t *testing.T) {
	node := H("input", A("type", "text"), "ignored")
	if len(node.Children) != 0 {
		t.Errorf("void element should have no children, got %d", len(node.Children))
	}
}

func TestAttr(t *testing.T) {
	node := H("button", A("disabled", true), A("hidden", false), A("tabindex", 2), A("title", nil))

	if v, ok := node.Attr("disabled"); !ok || v != "" {
		t.Errorf("disabled = %q, %v; want bare attribute", v, ok)
	}
	if _, ok := node.Attr("hidden"); ok {
		t.Error("false attribute should be absent")
	}
	if _, ok := node.Attr("title"); ok {
		t.Error("nil attribute should be absent")
	}
	if v, _ := node.Attr("tabindex"); v != "2" {
		t.Errorf("tabindex = %q, want 2", v)
	}
	var nilNode *VNode
	if _, ok := nilNode.Attr("x"); ok {
		t.Error("nil node has no attributes")
	}
}

func TestHasClass(t *testing.T) {
	node := H("div", Class("a", "bb"))
	if !node.HasClass("bb") {
		t.Error("expected class bb")
	}
	if node.HasClass("b") {
		t.Error("class matching must be whole-word")
	}
}

func TestClone(t *testing.T) {
	orig := H("div", ID("x"), H("span", "text"))
	orig.HID = "h1"
	c := orig.Clone()

	c.Props["id"] = "y"
	c.Children[0].Children[0].Text = "changed"

	if v, _ := orig.Attr("id"); v != "x" {
		t.Error("clone shares props with original")
	}
	if orig.Children[0].Children[0].Text != "text" {
		t.Error("clone shares children with original")
	}
	if c.HID != "h1" {
		t.Error("clone should keep HIDs")
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	tree := H("div", H("section", H("p", "deep")), H("footer"))
	var seen []string
	Walk(tree, func(n *VNode) bool {
		if n.Kind == KindElement {
			seen = append(seen, n.Tag)
		}
		return n.Tag != "section"
	})
	want := []string{"div", "section", "footer"}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("seen[%d] = %q, want %q", i, seen[i], want[i])
		}
	}
}

func TestRangeAndIf(t *testing.T) {
	items := []string{"a", "", "c"}
	nodes := Range(items, func(s string, _ int) *VNode {
		return If(s != "", H("li", s))
	})
	if len(nodes) != 2 {
		t.Errorf("Range should drop nil nodes, got %d", len(nodes))
	}
}
