package vdom

import (
	"fmt"
	"strings"
)

// A creates an attribute with the given key and value.
// A nil or false value omits the attribute; true renders it bare.
func A(key string, value any) Attr { return Attr{Key: key, Value: value} }

// ID sets the id attribute.
func ID(id string) Attr { return A("id", id) }

// Class sets the class attribute, joining multiple classes with spaces.
func Class(classes ...string) Attr { return A("class", strings.Join(classes, " ")) }

// StyleAttr sets the style attribute.
func StyleAttr(style string) Attr { return A("style", style) }

// Data creates a data-* attribute.
// Example: Data("id", "123") → data-id="123"
func Data(key, value string) Attr { return A("data-"+key, value) }

// Key creates a key for keyed reconciliation.
// The key is converted to a string using fmt.Sprintf.
func Key(key any) Attr { return A("key", fmt.Sprintf("%v", key)) }

// Slot sets the slot attribute.
func Slot(name string) Attr { return A("slot", name) }
