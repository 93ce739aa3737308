package vdom

import (
	"io"
	"slices"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HIDAttribute is the attribute carrying a node's hydration ID in HTML output.
const HIDAttribute = "data-hid"

// ParseHTML parses an HTML fragment into a tree.
// A fragment with a single top-level node returns that node; several
// top-level nodes are wrapped in a Fragment. Comments and whitespace-only
// text between elements are dropped.
func ParseHTML(fragment string) (*VNode, error) {
	context := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(fragment), context)
	if err != nil {
		return nil, err
	}

	var roots []*VNode
	for _, n := range nodes {
		if v := fromHTML(n); v != nil {
			roots = append(roots, v)
		}
	}
	if len(roots) == 1 {
		return roots[0], nil
	}
	return Fragment(roots), nil
}

func fromHTML(n *html.Node) *VNode {
	switch n.Type {
	case html.TextNode:
		if strings.TrimSpace(n.Data) == "" {
			return nil
		}
		return Text(n.Data)
	case html.ElementNode:
		node := H(n.Data)
		for _, a := range n.Attr {
			if a.Key == "key" {
				node.Key = a.Val
				continue
			}
			node.Props[a.Key] = a.Val
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			node.appendChild(fromHTML(c))
		}
		return node
	default:
		return nil
	}
}

// RenderOptions controls HTML output.
type RenderOptions struct {
	// IncludeHIDs writes each element's HID as a data-hid attribute.
	IncludeHIDs bool
}

// RenderHTML writes the tree as HTML.
func RenderHTML(w io.Writer, node *VNode, opts RenderOptions) error {
	for _, n := range toHTML(node, opts) {
		if err := html.Render(w, n); err != nil {
			return err
		}
	}
	return nil
}

// HTMLString renders the tree to a string, ignoring write errors.
func HTMLString(node *VNode, opts RenderOptions) string {
	var b strings.Builder
	_ = RenderHTML(&b, node, opts)
	return b.String()
}

func toHTML(node *VNode, opts RenderOptions) []*html.Node {
	if node == nil {
		return nil
	}

	switch node.Kind {
	case KindText:
		return []*html.Node{{Type: html.TextNode, Data: node.Text}}
	case KindRaw:
		return []*html.Node{{Type: html.RawNode, Data: node.Text}}
	case KindFragment:
		var out []*html.Node
		for _, child := range node.Children {
			out = append(out, toHTML(child, opts)...)
		}
		return out
	}

	el := &html.Node{
		Type:     html.ElementNode,
		Data:     node.Tag,
		DataAtom: atom.Lookup([]byte(node.Tag)),
	}

	keys := make([]string, 0, len(node.Props))
	for k := range node.Props {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		val, ok := node.Attr(k)
		if !ok {
			continue
		}
		el.Attr = append(el.Attr, html.Attribute{Key: k, Val: val})
	}
	if opts.IncludeHIDs && node.HID != "" {
		el.Attr = append(el.Attr, html.Attribute{Key: HIDAttribute, Val: node.HID})
	}

	if !IsVoidElement(node.Tag) {
		for _, child := range node.Children {
			for _, c := range toHTML(child, opts) {
				el.AppendChild(c)
			}
		}
	}
	return []*html.Node{el}
}
