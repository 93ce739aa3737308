// Package vdom provides the virtual node tree rendered by DNA elements.
//
// A Render callback returns a *VNode describing the element's desired
// children. The realm keeps the previous tree and diffs the two to produce
// Patch operations for whatever target hosts the element.
//
// # Building Trees
//
// Trees are built with H, which takes a tag and any mix of attributes,
// child nodes and strings:
//
//	H("ul", Class("todo"),
//	    H("li", Key("a"), "first"),
//	    H("li", Key("b"), "second"),
//	)
//
// Templates can also be written as HTML and parsed with ParseHTML.
//
// # Diffing
//
// Diff compares two trees and returns the patches needed to turn one into
// the other. Keyed reconciliation is used when children carry keys.
//
// # Hydration IDs
//
// Every element in a rendered tree carries a hydration ID (HID) so patches
// and inbound events can address it.
//
// # Selectors
//
// CompileSelector parses the selector subset used by event delegation and
// Selector.Match tests a node against it given its ancestor chain.
package vdom
