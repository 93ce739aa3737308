// Package dnatest provides testing helpers for element definitions.
//
// Mount creates, initializes and connects an element with a recording
// patch sink, so tests can drive it the way a client would and assert on
// the rendered output.
//
// # Quick Start
//
//	func TestCounter(t *testing.T) {
//	    h := dnatest.Mount(t, counterDefinition())
//	    h.Fire("click", "button.inc", nil)
//	    h.ExpectContains("<output>1</output>")
//	    h.ExpectEmitted("change")
//	}
//
// # Render Assertions
//
//	h.ExpectContains("Welcome")
//	h.ExpectNotContains("Error")
//	h.ExpectElement("button.inc")
//	h.ExpectAttribute("count", "1")
package dnatest
