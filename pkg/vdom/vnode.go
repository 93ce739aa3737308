package vdom

import "strings"

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement  VKind = iota // <div>, <button>, etc.
	KindText                  // Plain text node
	KindFragment              // Grouping without wrapper
	KindRaw                   // Raw HTML (dangerous)
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindRaw:
		return "Raw"
	default:
		return "Unknown"
	}
}

// VNode is the virtual DOM node.
type VNode struct {
	Kind     VKind    // Node type
	Tag      string   // Element tag name (e.g., "div")
	Props    Props    // Attributes
	Children []*VNode // Child nodes
	Key      string   // Reconciliation key
	Text     string   // For KindText and KindRaw
	HID      string   // Hydration ID (assigned by the realm)
}

// Props holds attributes.
type Props map[string]any

// Attr returns the string form of an attribute and whether it is present.
func (v *VNode) Attr(name string) (string, bool) {
	if v == nil || v.Props == nil {
		return "", false
	}
	val, ok := v.Props[name]
	if !ok || val == nil || val == false {
		return "", false
	}
	if val == true {
		return "", true
	}
	return propToString(val), true
}

// HasClass reports whether the class attribute contains class.
func (v *VNode) HasClass(class string) bool {
	classes, ok := v.Attr("class")
	if !ok {
		return false
	}
	for _, c := range strings.Fields(classes) {
		if c == class {
			return true
		}
	}
	return false
}

// Walk visits node and its descendants depth-first.
// Returning false from fn skips the node's children.
func Walk(node *VNode, fn func(*VNode) bool) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for _, child := range node.Children {
		Walk(child, fn)
	}
}

// Clone returns a deep copy of the tree. Props values are copied shallowly.
func (v *VNode) Clone() *VNode {
	if v == nil {
		return nil
	}
	c := *v
	if v.Props != nil {
		c.Props = make(Props, len(v.Props))
		for k, val := range v.Props {
			c.Props[k] = val
		}
	}
	if v.Children != nil {
		c.Children = make([]*VNode, len(v.Children))
		for i, child := range v.Children {
			c.Children[i] = child.Clone()
		}
	}
	return &c
}

// Attr represents a single attribute.
type Attr struct {
	Key   string
	Value any
}

// IsEmpty returns true if this is an empty/nil attribute.
func (a Attr) IsEmpty() bool {
	return a.Key == ""
}
