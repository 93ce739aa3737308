package vdom

import (
	"strconv"
	"sync"
)

// HIDGenerator generates unique hydration IDs for rendered nodes.
type HIDGenerator struct {
	prefix  string
	counter uint32
	mu      sync.Mutex
}

// NewHIDGenerator creates a new HIDGenerator producing "h1", "h2", ...
func NewHIDGenerator() *HIDGenerator {
	return &HIDGenerator{prefix: "h"}
}

// NewPrefixedHIDGenerator creates a generator whose IDs start with prefix.
// Distinct prefixes keep IDs unique across elements sharing one target.
func NewPrefixedHIDGenerator(prefix string) *HIDGenerator {
	return &HIDGenerator{prefix: prefix}
}

// Next returns the next hydration ID.
func (g *HIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return g.prefix + strconv.FormatUint(uint64(g.counter), 10)
}

// AssignMissingHIDs gives every element, text and raw node without a HID a
// fresh one. Fragments never receive HIDs.
func AssignMissingHIDs(node *VNode, gen *HIDGenerator) {
	Walk(node, func(n *VNode) bool {
		if n.Kind != KindFragment && n.HID == "" {
			n.HID = gen.Next()
		}
		return true
	})
}

// FindByHID finds a node by its HID in the tree.
func FindByHID(node *VNode, hid string) *VNode {
	if path := PathTo(node, hid); len(path) > 0 {
		return path[0]
	}
	return nil
}

// PathTo returns the chain of nodes from the node with hid up to root,
// target first. The result is empty when hid is not in the tree.
func PathTo(root *VNode, hid string) []*VNode {
	var path []*VNode
	var find func(n *VNode) bool
	find = func(n *VNode) bool {
		if n == nil {
			return false
		}
		if n.HID == hid {
			path = append(path, n)
			return true
		}
		for _, child := range n.Children {
			if find(child) {
				path = append(path, n)
				return true
			}
		}
		return false
	}
	if hid == "" || !find(root) {
		return nil
	}
	return path
}
