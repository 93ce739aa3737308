package realm

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/dna-dev/dna/internal/errors"
	"github.com/dna-dev/dna/pkg/vdom"
)

func TestReconcileFirstRender(t *testing.T) {
	rec := &Recorder{}
	r := New("x-counter", rec)

	patches, err := r.Reconcile(vdom.Fragment(
		vdom.H("span", vdom.Class("count"), "0"),
		vdom.H("button", "+"),
	))
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(patches) != 2 {
		t.Fatalf("patches = %d, want 2", len(patches))
	}
	for i, p := range patches {
		if p.Op != vdom.PatchInsertNode || p.ParentID != r.HostID() || p.Index != i {
			t.Errorf("patch[%d] = %+v, want InsertNode under host at %d", i, p, i)
		}
		if p.Node.HID == "" {
			t.Errorf("patch[%d] node has no HID", i)
		}
	}
	if !r.Rendered() || r.Renders() != 1 {
		t.Errorf("Rendered() = %v, Renders() = %d", r.Rendered(), r.Renders())
	}
	if len(rec.Batches) != 1 {
		t.Errorf("sink batches = %d, want 1", len(rec.Batches))
	}
}

func TestReconcileNilIsNoChange(t *testing.T) {
	rec := &Recorder{}
	r := New("x-a", rec)
	patches, err := r.Reconcile(nil)
	if err != nil || patches != nil {
		t.Errorf("Reconcile(nil) = %v, %v", patches, err)
	}
	if r.Rendered() || len(rec.Batches) != 0 {
		t.Error("Reconcile(nil) changed the realm")
	}
}

func TestReconcileDiffsAgainstPrevious(t *testing.T) {
	rec := &Recorder{}
	r := New("x-counter", rec)
	view := func(n string) *vdom.VNode {
		return vdom.H("div", vdom.H("span", n), vdom.H("button", "+"))
	}

	r.Reconcile(view("0"))
	spanHID := r.Tree().Children[0].Children[0].HID
	rec.Reset()

	patches, err := r.Reconcile(view("1"))
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if len(patches) != 1 || patches[0].Op != vdom.PatchSetText {
		t.Fatalf("patches = %+v, want one SetText", patches)
	}
	if got := r.Tree().Children[0].Children[0].HID; got != spanHID {
		t.Errorf("span HID = %q, want %q (carried over)", got, spanHID)
	}

	// Identical render produces no patches and no sink call.
	rec.Reset()
	patches, _ = r.Reconcile(view("1"))
	if len(patches) != 0 || len(rec.Batches) != 0 {
		t.Errorf("identical render patches = %v, batches = %d", patches, len(rec.Batches))
	}
	if r.Renders() != 3 {
		t.Errorf("Renders() = %d, want 3", r.Renders())
	}
}

func TestReconcileAssignsHIDsToInsertedNodes(t *testing.T) {
	r := New("x-list", nil)
	r.Reconcile(vdom.H("ul"))
	patches, _ := r.Reconcile(vdom.H("ul", vdom.H("li", "a")))

	if len(patches) != 1 || patches[0].Op != vdom.PatchInsertNode {
		t.Fatalf("patches = %+v, want one InsertNode", patches)
	}
	if patches[0].Node.HID == "" || patches[0].Node.Children[0].HID == "" {
		t.Error("inserted nodes have no HIDs")
	}
	if r.Lookup(patches[0].Node.HID) != patches[0].Node {
		t.Error("Lookup did not find the inserted node")
	}
}

func TestReconcileSinkError(t *testing.T) {
	rec := &Recorder{Err: stderrors.New("closed")}
	r := New("x-a", rec)

	_, err := r.Reconcile(vdom.H("p", "x"))
	if !errors.IsCode(err, errors.CodeReconcileFailed) {
		t.Fatalf("error = %v, want E004", err)
	}
	if r.Rendered() || len(r.Tree().Children) != 0 {
		t.Error("failed reconciliation replaced the tree")
	}
}

func TestPathToAndLookup(t *testing.T) {
	r := New("x-a", nil, WithHIDPrefix("a"))
	r.Reconcile(vdom.H("ul", vdom.H("li", vdom.H("button", "go"))))

	button := r.Tree().Children[0].Children[0].Children[0]
	if !strings.HasPrefix(button.HID, "a") {
		t.Errorf("HID = %q, want prefix a", button.HID)
	}
	path := r.PathTo(button.HID)
	tags := make([]string, len(path))
	for i, n := range path {
		tags[i] = n.Tag
	}
	if strings.Join(tags, ",") != "button,li,ul,x-a" {
		t.Errorf("path = %v, want button,li,ul,x-a", tags)
	}
	if r.PathTo("missing") != nil {
		t.Error("PathTo(missing) returned a path")
	}
}

func TestSetHostAttr(t *testing.T) {
	rec := &Recorder{}
	r := New("x-a", rec)
	v := "true"

	if err := r.SetHostAttr("open", &v); err != nil {
		t.Fatalf("SetHostAttr() error = %v", err)
	}
	r.SetHostAttr("open", &v)
	r.SetHostAttr("open", nil)
	r.SetHostAttr("open", nil)

	ops := rec.Ops()
	if len(ops) != 2 || ops[0] != vdom.PatchSetAttr || ops[1] != vdom.PatchRemoveAttr {
		t.Errorf("ops = %v, want [SetAttr RemoveAttr]", ops)
	}
	if len(r.HostAttrs()) != 0 {
		t.Errorf("HostAttrs() = %v, want none", r.HostAttrs())
	}
}

func TestHTML(t *testing.T) {
	r := New("x-a", nil)
	v := "dark"
	r.SetHostAttr("theme", &v)
	r.Reconcile(vdom.H("p", "hi"))

	if got, want := r.HTML(false), `<x-a theme="dark"><p>hi</p></x-a>`; got != want {
		t.Errorf("HTML() = %q, want %q", got, want)
	}
	if got := r.HTML(true); !strings.Contains(got, `data-hid="h1"`) {
		t.Errorf("HTML(true) = %q, want host data-hid", got)
	}
}
