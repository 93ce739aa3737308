// Package realm owns the rendered subtree of one element.
//
// A Realm keeps the last rendered tree under a host node, reconciles each
// new render against it and hands the resulting patches to a Sink: a
// remote client session, a test recorder, or nothing at all.
package realm
