package protocol

import (
	"github.com/dna-dev/dna/internal/errors"
	"github.com/dna-dev/dna/pkg/vdom"
)

// FrameType identifies the type of frame.
type FrameType string

const (
	FrameHello     FrameType = "hello"     // Server → Client session setup
	FramePatches   FrameType = "patches"   // Server → Client patches
	FrameEvent     FrameType = "event"     // Both directions
	FrameError     FrameType = "error"     // Server → Client error
	FrameAttribute FrameType = "attribute" // Client → Server attribute change
	FrameAssign    FrameType = "assign"    // Client → Server property batch
)

// Frame is one protocol message. Only the fields of its Type are set.
type Frame struct {
	Type      FrameType      `json:"type" cbor:"1,keyasint"`
	Seq       uint64         `json:"seq,omitempty" cbor:"2,keyasint,omitempty"`
	Session   string         `json:"session,omitempty" cbor:"3,keyasint,omitempty"`
	Tag       string         `json:"tag,omitempty" cbor:"4,keyasint,omitempty"`
	HTML      string         `json:"html,omitempty" cbor:"5,keyasint,omitempty"`
	Patches   []Patch        `json:"patches,omitempty" cbor:"6,keyasint,omitempty"`
	Event     *Event         `json:"event,omitempty" cbor:"7,keyasint,omitempty"`
	Attribute *Attribute     `json:"attribute,omitempty" cbor:"8,keyasint,omitempty"`
	Props     map[string]any `json:"props,omitempty" cbor:"9,keyasint,omitempty"`
	Error     *ErrorInfo     `json:"error,omitempty" cbor:"10,keyasint,omitempty"`
}

// Patch is the wire form of a vdom.Patch. Inserted and replacing nodes
// travel as HTML carrying data-hid attributes.
type Patch struct {
	Op     string `json:"op" cbor:"1,keyasint"`
	HID    string `json:"hid,omitempty" cbor:"2,keyasint,omitempty"`
	Key    string `json:"key,omitempty" cbor:"3,keyasint,omitempty"`
	Value  string `json:"value,omitempty" cbor:"4,keyasint,omitempty"`
	Parent string `json:"parent,omitempty" cbor:"5,keyasint,omitempty"`
	Index  int    `json:"index,omitempty" cbor:"6,keyasint,omitempty"`
	HTML   string `json:"html,omitempty" cbor:"7,keyasint,omitempty"`
}

// Event is an event travelling in either direction.
type Event struct {
	Type   string `json:"type" cbor:"1,keyasint"`
	HID    string `json:"hid,omitempty" cbor:"2,keyasint,omitempty"`
	Detail any    `json:"detail,omitempty" cbor:"3,keyasint,omitempty"`
}

// Attribute is a host attribute change. A nil Value removes it.
type Attribute struct {
	Name  string  `json:"name" cbor:"1,keyasint"`
	Value *string `json:"value,omitempty" cbor:"2,keyasint,omitempty"`
}

// ErrorInfo describes a failed request.
type ErrorInfo struct {
	Code    string `json:"code,omitempty" cbor:"1,keyasint,omitempty"`
	Message string `json:"message" cbor:"2,keyasint"`
}

// NewPatches converts reconciliation patches into a patches frame.
func NewPatches(seq uint64, patches []vdom.Patch) *Frame {
	return &Frame{Type: FramePatches, Seq: seq, Patches: FromVDOM(patches)}
}

// NewError converts err into an error frame.
func NewError(err error) *Frame {
	return &Frame{Type: FrameError, Error: &ErrorInfo{
		Code:    errors.CodeOf(err),
		Message: err.Error(),
	}}
}

// FromVDOM converts patches to their wire form.
func FromVDOM(patches []vdom.Patch) []Patch {
	out := make([]Patch, len(patches))
	for i, p := range patches {
		wp := Patch{
			Op:     p.Op.String(),
			HID:    p.HID,
			Key:    p.Key,
			Value:  p.Value,
			Parent: p.ParentID,
			Index:  p.Index,
		}
		if p.Node != nil {
			wp.HTML = vdom.HTMLString(p.Node, vdom.RenderOptions{IncludeHIDs: true})
		}
		out[i] = wp
	}
	return out
}

// Validate checks that f is a well-formed frame.
func (f *Frame) Validate() error {
	malformed := func(detail string) error {
		return errors.New(errors.CodeMalformedFrame).WithSubject(string(f.Type)).WithDetail(detail)
	}
	switch f.Type {
	case FrameHello, FramePatches:
		return nil
	case FrameEvent:
		if f.Event == nil || f.Event.Type == "" {
			return malformed("An event frame needs an event with a type.")
		}
	case FrameError:
		if f.Error == nil {
			return malformed("An error frame needs an error.")
		}
	case FrameAttribute:
		if f.Attribute == nil || f.Attribute.Name == "" {
			return malformed("An attribute frame needs an attribute name.")
		}
	case FrameAssign:
		if len(f.Props) == 0 {
			return malformed("An assign frame needs at least one property.")
		}
	default:
		return malformed("Unknown frame type.")
	}
	return nil
}
