package realm

import (
	"slices"

	"github.com/dna-dev/dna/internal/errors"
	"github.com/dna-dev/dna/pkg/vdom"
)

// Option configures a Realm.
type Option func(*Realm)

// WithHIDPrefix sets the prefix of the hydration IDs the realm assigns.
// Realms sharing one sink need distinct prefixes.
func WithHIDPrefix(prefix string) Option {
	return func(r *Realm) {
		r.gen = vdom.NewPrefixedHIDGenerator(prefix)
	}
}

// Realm holds the rendered tree of one element.
type Realm struct {
	root     *vdom.VNode
	sink     Sink
	gen      *vdom.HIDGenerator
	rendered bool
	renders  int
}

// New creates a realm whose host node has the given tag.
// A nil sink discards patches.
func New(tag string, sink Sink, opts ...Option) *Realm {
	if sink == nil {
		sink = Discard
	}
	r := &Realm{
		sink: sink,
		gen:  vdom.NewHIDGenerator(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.root = &vdom.VNode{
		Kind:  vdom.KindElement,
		Tag:   tag,
		Props: vdom.Props{},
		HID:   r.gen.Next(),
	}
	return r
}

// SetSink replaces the patch sink. A nil sink discards patches.
func (r *Realm) SetSink(sink Sink) {
	if sink == nil {
		sink = Discard
	}
	r.sink = sink
}

// Tree returns the host node with the current rendered children.
func (r *Realm) Tree() *vdom.VNode {
	return r.root
}

// HostID returns the hydration ID of the host node.
func (r *Realm) HostID() string {
	return r.root.HID
}

// Rendered reports whether the first render was reconciled.
func (r *Realm) Rendered() bool {
	return r.rendered
}

// Renders returns the number of successful reconciliations.
func (r *Realm) Renders() int {
	return r.renders
}

// Reconcile replaces the rendered children with next and returns the
// patches that were sent to the sink. A nil next means no change.
// A fragment contributes its children directly.
func (r *Realm) Reconcile(next *vdom.VNode) ([]vdom.Patch, error) {
	if next == nil {
		return nil, nil
	}

	candidate := &vdom.VNode{
		Kind:     vdom.KindElement,
		Tag:      r.root.Tag,
		Props:    r.root.Props,
		HID:      r.root.HID,
		Children: contentOf(next),
	}

	var patches []vdom.Patch
	if !r.rendered {
		vdom.AssignMissingHIDs(candidate, r.gen)
		for i, child := range candidate.Children {
			patches = append(patches, vdom.Patch{
				Op:       vdom.PatchInsertNode,
				ParentID: candidate.HID,
				Index:    i,
				Node:     child,
			})
		}
	} else {
		patches = vdom.Diff(r.root, candidate)
		vdom.AssignMissingHIDs(candidate, r.gen)
	}

	if len(patches) > 0 {
		if err := r.sink.Apply(patches); err != nil {
			return nil, errors.New(errors.CodeReconcileFailed).Wrap(err)
		}
	}

	r.root = candidate
	r.rendered = true
	r.renders++
	return patches, nil
}

// SetHostAttr sets (value non-nil) or removes (nil) an attribute on the
// host node and forwards the change to the sink.
func (r *Realm) SetHostAttr(name string, value *string) error {
	var p vdom.Patch
	if value == nil {
		if _, ok := r.root.Props[name]; !ok {
			return nil
		}
		delete(r.root.Props, name)
		p = vdom.Patch{Op: vdom.PatchRemoveAttr, HID: r.root.HID, Key: name}
	} else {
		if cur, ok := r.root.Props[name]; ok && cur == *value {
			return nil
		}
		r.root.Props[name] = *value
		p = vdom.Patch{Op: vdom.PatchSetAttr, HID: r.root.HID, Key: name, Value: *value}
	}
	if err := r.sink.Apply([]vdom.Patch{p}); err != nil {
		return errors.New(errors.CodeReconcileFailed).WithSubject(name).Wrap(err)
	}
	return nil
}

// HostAttrs returns the host attribute names in sorted order.
func (r *Realm) HostAttrs() []string {
	names := make([]string, 0, len(r.root.Props))
	for k := range r.root.Props {
		names = append(names, k)
	}
	slices.Sort(names)
	return names
}

// Lookup returns the rendered node with the given hydration ID.
func (r *Realm) Lookup(hid string) *vdom.VNode {
	return vdom.FindByHID(r.root, hid)
}

// PathTo returns the nodes from hid up to the host, target first.
func (r *Realm) PathTo(hid string) []*vdom.VNode {
	return vdom.PathTo(r.root, hid)
}

// HTML renders the host and its children.
func (r *Realm) HTML(includeHIDs bool) string {
	return vdom.HTMLString(r.root, vdom.RenderOptions{IncludeHIDs: includeHIDs})
}

func contentOf(node *vdom.VNode) []*vdom.VNode {
	if node.Kind != vdom.KindFragment {
		return []*vdom.VNode{node}
	}
	var out []*vdom.VNode
	for _, child := range node.Children {
		if child == nil {
			continue
		}
		out = append(out, contentOf(child)...)
	}
	return out
}
