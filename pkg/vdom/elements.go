package vdom

// voidElements are elements that cannot have children.
var voidElements = map[string]bool{
	"area":   true,
	"base":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"source": true,
	"track":  true,
	"wbr":    true,
}

// IsVoidElement returns true if the tag is a void element.
func IsVoidElement(tag string) bool {
	return voidElements[tag]
}

// H creates an element node.
// Arguments can be: nil, Attr, []Attr, *VNode, []*VNode, string.
// Strings become text children. Children of void elements are dropped.
func H(tag string, args ...any) *VNode {
	node := &VNode{
		Kind:     KindElement,
		Tag:      tag,
		Props:    make(Props),
		Children: make([]*VNode, 0),
	}

	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
			continue
		case Attr:
			node.setAttr(v)
		case []Attr:
			for _, a := range v {
				node.setAttr(a)
			}
		case *VNode:
			node.appendChild(v)
		case []*VNode:
			for _, c := range v {
				node.appendChild(c)
			}
		case string:
			node.appendChild(Text(v))
		}
	}

	if voidElements[tag] {
		node.Children = node.Children[:0]
	}
	return node
}

func (v *VNode) setAttr(a Attr) {
	if a.IsEmpty() {
		return
	}
	if a.Key == "key" {
		if s, ok := a.Value.(string); ok {
			v.Key = s
		}
		return
	}
	v.Props[a.Key] = a.Value
}

func (v *VNode) appendChild(child *VNode) {
	if child == nil {
		return
	}
	// Fragments are flattened into their parent.
	if child.Kind == KindFragment {
		for _, c := range child.Children {
			v.appendChild(c)
		}
		return
	}
	v.Children = append(v.Children, child)
}
