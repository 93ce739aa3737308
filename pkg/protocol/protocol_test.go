package protocol

import (
	"strings"
	"testing"

	"github.com/dna-dev/dna/internal/errors"
	"github.com/dna-dev/dna/pkg/vdom"
)

func strp(s string) *string { return &s }

func codecs() []Codec { return []Codec{JSON, CBOR} }

func TestCodecRoundTripsFrameTypes(t *testing.T) {
	frames := []*Frame{
		{Type: FrameHello, Session: "s1", Tag: "x-counter", HTML: "<x-counter></x-counter>"},
		{Type: FramePatches, Seq: 7, Patches: []Patch{{Op: "SetText", HID: "h3", Value: "1"}}},
		{Type: FrameEvent, Event: &Event{Type: "click", HID: "h4"}},
		{Type: FrameError, Error: &ErrorInfo{Code: "E001", Message: "bad"}},
		{Type: FrameAttribute, Attribute: &Attribute{Name: "count", Value: strp("3")}},
		{Type: FrameAttribute, Attribute: &Attribute{Name: "open"}},
		{Type: FrameAssign, Props: map[string]any{"label": "hi"}},
	}
	for _, c := range codecs() {
		for _, f := range frames {
			data, err := c.Encode(f)
			if err != nil {
				t.Fatalf("%s Encode(%s) error = %v", c.Name(), f.Type, err)
			}
			got, err := c.Decode(data)
			if err != nil {
				t.Fatalf("%s Decode(%s) error = %v", c.Name(), f.Type, err)
			}
			if got.Type != f.Type || got.Seq != f.Seq || got.Session != f.Session || got.HTML != f.HTML {
				t.Errorf("%s %s: got %+v, want %+v", c.Name(), f.Type, got, f)
			}
			switch f.Type {
			case FramePatches:
				if len(got.Patches) != 1 || got.Patches[0] != f.Patches[0] {
					t.Errorf("%s patches = %+v", c.Name(), got.Patches)
				}
			case FrameEvent:
				if *got.Event != *f.Event {
					t.Errorf("%s event = %+v", c.Name(), got.Event)
				}
			case FrameError:
				if *got.Error != *f.Error {
					t.Errorf("%s error = %+v", c.Name(), got.Error)
				}
			case FrameAttribute:
				if got.Attribute.Name != f.Attribute.Name {
					t.Errorf("%s attribute name = %q", c.Name(), got.Attribute.Name)
				}
				if (got.Attribute.Value == nil) != (f.Attribute.Value == nil) {
					t.Errorf("%s attribute value presence differs", c.Name())
				} else if f.Attribute.Value != nil && *got.Attribute.Value != *f.Attribute.Value {
					t.Errorf("%s attribute value = %q", c.Name(), *got.Attribute.Value)
				}
			case FrameAssign:
				if got.Props["label"] != "hi" {
					t.Errorf("%s props = %v", c.Name(), got.Props)
				}
			}
		}
	}
}

func TestCodecNumbers(t *testing.T) {
	f := &Frame{Type: FrameAssign, Props: map[string]any{"count": 3}}

	data, _ := JSON.Encode(f)
	got, err := JSON.Decode(data)
	if err != nil {
		t.Fatalf("JSON Decode() error = %v", err)
	}
	if got.Props["count"] != float64(3) {
		t.Errorf("JSON count = %#v, want float64(3)", got.Props["count"])
	}

	data, _ = CBOR.Encode(f)
	got, err = CBOR.Decode(data)
	if err != nil {
		t.Fatalf("CBOR Decode() error = %v", err)
	}
	if got.Props["count"] != int64(3) {
		t.Errorf("CBOR count = %#v, want int64(3)", got.Props["count"])
	}
}

func TestCBORDetailMaps(t *testing.T) {
	f := &Frame{Type: FrameEvent, Event: &Event{Type: "input", HID: "h2", Detail: map[string]any{"value": "abc"}}}
	data, _ := CBOR.Encode(f)
	got, err := CBOR.Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	detail, ok := got.Event.Detail.(map[string]any)
	if !ok || detail["value"] != "abc" {
		t.Errorf("detail = %#v, want map[string]any", got.Event.Detail)
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not json", "{"},
		{"unknown type", `{"type":"nope"}`},
		{"event without type", `{"type":"event","event":{"hid":"h1"}}`},
		{"event missing", `{"type":"event"}`},
		{"attribute without name", `{"type":"attribute","attribute":{"value":"x"}}`},
		{"empty assign", `{"type":"assign","props":{}}`},
		{"error missing", `{"type":"error"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := JSON.Decode([]byte(tt.data))
			if !errors.IsCode(err, errors.CodeMalformedFrame) {
				t.Errorf("Decode(%s) error = %v, want E030", tt.data, err)
			}
		})
	}

	if _, err := CBOR.Decode([]byte{0xff}); !errors.IsCode(err, errors.CodeMalformedFrame) {
		t.Errorf("CBOR Decode(garbage) error = %v, want E030", err)
	}
}

func TestFromVDOM(t *testing.T) {
	node := vdom.H("li", "a")
	node.HID = "h5"
	node.Children[0].HID = "h6"
	patches := FromVDOM([]vdom.Patch{
		{Op: vdom.PatchInsertNode, ParentID: "h1", Index: 2, Node: node},
		{Op: vdom.PatchRemoveAttr, HID: "h2", Key: "hidden"},
	})

	if patches[0].Op != "InsertNode" || patches[0].Parent != "h1" || patches[0].Index != 2 {
		t.Errorf("patch[0] = %+v", patches[0])
	}
	if patches[0].HTML != `<li data-hid="h5">a</li>` {
		t.Errorf("patch[0].HTML = %q", patches[0].HTML)
	}
	if patches[1].Op != "RemoveAttr" || patches[1].Key != "hidden" || patches[1].HTML != "" {
		t.Errorf("patch[1] = %+v", patches[1])
	}
}

func TestNewError(t *testing.T) {
	f := NewError(errors.New(errors.CodeInvalidProperty).WithSubject("x"))
	if f.Type != FrameError || f.Error.Code != "E001" || !strings.Contains(f.Error.Message, `"x"`) {
		t.Errorf("NewError() = %+v", f.Error)
	}
}

func TestForName(t *testing.T) {
	if c, err := ForName("cbor"); err != nil || !c.Binary() {
		t.Errorf("ForName(cbor) = %v, %v", c, err)
	}
	if c, err := ForName(""); err != nil || c.Name() != CodecJSON {
		t.Errorf("ForName(\"\") = %v, %v", c, err)
	}
	if _, err := ForName("xml"); !errors.IsCode(err, errors.CodeConfigInvalid) {
		t.Errorf("ForName(xml) error = %v, want E021", err)
	}
}
