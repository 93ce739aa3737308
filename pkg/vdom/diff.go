package vdom

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
)

// Diff compares two VNode trees and returns the patches needed to transform prev into next.
// HIDs of matched nodes are carried over from prev to next.
func Diff(prev, next *VNode) []Patch {
	var patches []Patch
	diff(prev, next, "", &patches)
	return patches
}

// diff recursively compares nodes and appends patches.
// parentHID is the HID of the parent element, used for text patches that don't have their own HID.
func diff(prev, next *VNode, parentHID string, patches *[]Patch) {
	if prev == nil && next == nil {
		return
	}

	// Node added (handled by parent via InsertNode)
	if prev == nil {
		return
	}

	if next == nil {
		*patches = append(*patches, Patch{
			Op:  PatchRemoveNode,
			HID: prev.HID,
		})
		return
	}

	if prev.Kind != next.Kind {
		*patches = append(*patches, Patch{
			Op:   PatchReplaceNode,
			HID:  targetOf(prev, parentHID),
			Node: next,
		})
		return
	}

	switch prev.Kind {
	case KindText:
		diffText(prev, next, parentHID, patches)
	case KindElement:
		diffElement(prev, next, patches)
	case KindFragment:
		next.HID = prev.HID
		diffChildren(prev, next, parentHID, patches)
	case KindRaw:
		diffRaw(prev, next, parentHID, patches)
	}
}

// targetOf returns the node's own HID, falling back to its parent's.
func targetOf(node *VNode, parentHID string) string {
	if node.HID != "" {
		return node.HID
	}
	return parentHID
}

func diffText(prev, next *VNode, parentHID string, patches *[]Patch) {
	next.HID = prev.HID

	if prev.Text != next.Text {
		// Text nodes have no HID of their own; the parent's text content is updated.
		if target := targetOf(prev, parentHID); target != "" {
			*patches = append(*patches, Patch{
				Op:    PatchSetText,
				HID:   target,
				Value: next.Text,
			})
		}
	}
}

func diffElement(prev, next *VNode, patches *[]Patch) {
	if prev.Tag != next.Tag {
		*patches = append(*patches, Patch{
			Op:   PatchReplaceNode,
			HID:  prev.HID,
			Node: next,
		})
		return
	}

	next.HID = prev.HID
	diffProps(prev, next, patches)
	diffChildren(prev, next, prev.HID, patches)
}

func diffRaw(prev, next *VNode, parentHID string, patches *[]Patch) {
	next.HID = prev.HID

	if prev.Text != next.Text {
		if target := targetOf(prev, parentHID); target != "" {
			*patches = append(*patches, Patch{
				Op:   PatchReplaceNode,
				HID:  target,
				Node: next,
			})
		}
	}
}

// diffProps compares and patches attributes.
func diffProps(prev, next *VNode, patches *[]Patch) {
	for key, prevVal := range prev.Props {
		nextVal, exists := next.Props[key]
		if !exists || isAbsent(nextVal) {
			if !isAbsent(prevVal) {
				*patches = append(*patches, Patch{
					Op:  PatchRemoveAttr,
					HID: prev.HID,
					Key: key,
				})
			}
		} else if !propsEqual(prevVal, nextVal) {
			*patches = append(*patches, Patch{
				Op:    PatchSetAttr,
				HID:   prev.HID,
				Key:   key,
				Value: propToString(nextVal),
			})
		}
	}

	for key, nextVal := range next.Props {
		if isAbsent(nextVal) {
			continue
		}
		if prevVal, exists := prev.Props[key]; !exists || isAbsent(prevVal) {
			*patches = append(*patches, Patch{
				Op:    PatchSetAttr,
				HID:   prev.HID,
				Key:   key,
				Value: propToString(nextVal),
			})
		}
	}
}

// isAbsent reports whether a prop value means "attribute not present".
func isAbsent(v any) bool {
	return v == nil || v == false
}

// diffChildren compares and patches child nodes.
func diffChildren(prev, next *VNode, parentHID string, patches *[]Patch) {
	if hasKeys(prev.Children) || hasKeys(next.Children) {
		diffKeyedChildren(prev, prev.Children, next.Children, parentHID, patches)
	} else {
		diffUnkeyedChildren(prev, prev.Children, next.Children, parentHID, patches)
	}
}

// diffUnkeyedChildren handles children without keys using positional matching.
func diffUnkeyedChildren(parent *VNode, prev, next []*VNode, parentHID string, patches *[]Patch) {
	maxLen := max(len(prev), len(next))

	for i := 0; i < maxLen; i++ {
		var prevChild, nextChild *VNode
		if i < len(prev) {
			prevChild = prev[i]
		}
		if i < len(next) {
			nextChild = next[i]
		}

		switch {
		case prevChild == nil && nextChild != nil:
			*patches = append(*patches, Patch{
				Op:       PatchInsertNode,
				ParentID: parent.HID,
				Index:    i,
				Node:     nextChild,
			})
		case prevChild != nil && nextChild == nil:
			*patches = append(*patches, Patch{
				Op:  PatchRemoveNode,
				HID: prevChild.HID,
			})
		default:
			diff(prevChild, nextChild, parentHID, patches)
		}
	}
}

// diffKeyedChildren handles children with keys for efficient reordering.
// Index fields refer to the parent's children after every earlier patch
// of the same parent was applied, so patches must be applied in order.
// Unmatched previous children stay in place until the trailing removals.
func diffKeyedChildren(parent *VNode, prev, next []*VNode, parentHID string, patches *[]Patch) {
	prevKeyMap := make(map[string]int)
	for i, child := range prev {
		if key := getKey(child); key != "" {
			prevKeyMap[key] = i
		}
	}

	// current mirrors the client's child order as patches are emitted.
	current := make([]*VNode, len(prev))
	copy(current, prev)

	matched := make(map[int]bool)

	for nextIdx, nextChild := range next {
		key := getKey(nextChild)

		prevIdx, exists := prevKeyMap[key]
		if key == "" || !exists || matched[prevIdx] {
			*patches = append(*patches, Patch{
				Op:       PatchInsertNode,
				ParentID: parent.HID,
				Index:    nextIdx,
				Node:     nextChild,
			})
			current = slices.Insert(current, nextIdx, nextChild)
			continue
		}

		matched[prevIdx] = true
		prevChild := prev[prevIdx]
		if pos := slices.Index(current, prevChild); pos != nextIdx {
			*patches = append(*patches, Patch{
				Op:       PatchMoveNode,
				HID:      prevChild.HID,
				ParentID: parent.HID,
				Index:    nextIdx,
			})
			current = slices.Delete(current, pos, pos+1)
			current = slices.Insert(current, nextIdx, prevChild)
		}
		diff(prevChild, nextChild, parentHID, patches)
	}

	for i, prevChild := range prev {
		if !matched[i] {
			*patches = append(*patches, Patch{
				Op:  PatchRemoveNode,
				HID: prevChild.HID,
			})
		}
	}
}

// getKey extracts the key from a node.
func getKey(node *VNode) string {
	if node == nil {
		return ""
	}
	return node.Key
}

// hasKeys returns true if any child has a key.
func hasKeys(children []*VNode) bool {
	for _, child := range children {
		if getKey(child) != "" {
			return true
		}
	}
	return false
}

// propsEqual compares two prop values for equality.
func propsEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return reflect.DeepEqual(a, b)
}

// propToString converts a prop value to its attribute string form.
func propToString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return ""
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
