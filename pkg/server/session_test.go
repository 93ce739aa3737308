package server

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dna-dev/dna/pkg/protocol"
)

type client struct {
	t     *testing.T
	conn  *websocket.Conn
	codec protocol.Codec
}

func dial(t *testing.T, url string, codec protocol.Codec) *client {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(url, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial(%s) error = %v", wsURL, err)
	}
	t.Cleanup(func() { conn.Close() })
	return &client{t: t, conn: conn, codec: codec}
}

func (c *client) send(f *protocol.Frame) {
	c.t.Helper()
	data, err := c.codec.Encode(f)
	if err != nil {
		c.t.Fatalf("Encode() error = %v", err)
	}
	msgType := websocket.TextMessage
	if c.codec.Binary() {
		msgType = websocket.BinaryMessage
	}
	if err := c.conn.WriteMessage(msgType, data); err != nil {
		c.t.Fatalf("WriteMessage() error = %v", err)
	}
}

func (c *client) read() *protocol.Frame {
	c.t.Helper()
	c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	msgType, data, err := c.conn.ReadMessage()
	if err != nil {
		c.t.Fatalf("ReadMessage() error = %v", err)
	}
	if c.codec.Binary() != (msgType == websocket.BinaryMessage) {
		c.t.Fatalf("message type = %d for codec %s", msgType, c.codec.Name())
	}
	f, err := c.codec.Decode(data)
	if err != nil {
		c.t.Fatalf("Decode() error = %v", err)
	}
	return f
}

// readUntil reads frames until match accepts one.
func (c *client) readUntil(match func(*protocol.Frame) bool) *protocol.Frame {
	c.t.Helper()
	for i := 0; i < 10; i++ {
		if f := c.read(); match(f) {
			return f
		}
	}
	c.t.Fatal("no matching frame in 10 frames")
	return nil
}

func hasText(value string) func(*protocol.Frame) bool {
	return func(f *protocol.Frame) bool {
		if f.Type != protocol.FramePatches {
			return false
		}
		for _, p := range f.Patches {
			if p.Op == "SetText" && p.Value == value {
				return true
			}
		}
		return false
	}
}

func isError(f *protocol.Frame) bool { return f.Type == protocol.FrameError }

func strp(s string) *string { return &s }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSessionHello(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	c := dial(t, ts.URL+"/ws/x-counter?count=3", protocol.JSON)

	hello := c.read()
	if hello.Type != protocol.FrameHello || hello.Session == "" || hello.Tag != "x-counter" {
		t.Fatalf("hello = %+v", hello)
	}
	if !strings.Contains(hello.HTML, `<span class="count"`) || !strings.Contains(hello.HTML, `>3</span>`) {
		t.Errorf("hello HTML = %s", hello.HTML)
	}
	if !strings.HasPrefix(hello.HTML, `<x-counter data-hid="`) {
		t.Errorf("hello HTML does not start with the hydrated host: %s", hello.HTML)
	}

	waitFor(t, func() bool { return srv.Sessions().Count() == 1 })
	if s := srv.Sessions().Get(hello.Session); s == nil || s.Tag != "x-counter" {
		t.Errorf("Get(%q) = %v", hello.Session, s)
	}
}

func TestSessionEventRendersPatches(t *testing.T) {
	_, ts := newTestServer(t, nil)
	c := dial(t, ts.URL+"/ws/x-counter", protocol.JSON)

	hello := c.read()
	hids := buttonHIDs(hello.HTML)
	if hids["inc"] == "" {
		t.Fatalf("no button HID in %s", hello.HTML)
	}

	c.send(&protocol.Frame{Type: protocol.FrameEvent, Event: &protocol.Event{Type: "click", HID: hids["inc"]}})
	first := c.read()
	if first.Type != protocol.FramePatches || first.Seq != 1 || !hasText("1")(first) {
		t.Fatalf("first patches = %+v", first)
	}

	c.send(&protocol.Frame{Type: protocol.FrameEvent, Event: &protocol.Event{Type: "click", HID: hids["inc"]}})
	second := c.read()
	if second.Seq != 2 || !hasText("2")(second) {
		t.Errorf("second patches = %+v", second)
	}
}

func TestSessionAttributeAndAssign(t *testing.T) {
	_, ts := newTestServer(t, nil)
	c := dial(t, ts.URL+"/ws/x-counter", protocol.JSON)
	c.read()

	c.send(&protocol.Frame{Type: protocol.FrameAttribute, Attribute: &protocol.Attribute{Name: "count", Value: strp("7")}})
	c.readUntil(hasText("7"))

	c.send(&protocol.Frame{Type: protocol.FrameAssign, Props: map[string]any{"count": 9, "label": "Total"}})
	f := c.readUntil(hasText("9"))
	if !hasText("Total")(f) {
		t.Errorf("assign patches = %+v, want label and count in one frame", f.Patches)
	}
}

func TestSessionErrors(t *testing.T) {
	_, ts := newTestServer(t, nil)
	c := dial(t, ts.URL+"/ws/x-counter", protocol.JSON)
	c.read()

	tests := []struct {
		name string
		send func()
		code string
	}{
		{"malformed", func() { c.conn.WriteMessage(websocket.TextMessage, []byte("{")) }, "E030"},
		{"unknown hid", func() {
			c.send(&protocol.Frame{Type: protocol.FrameEvent, Event: &protocol.Event{Type: "click", HID: "nope"}})
		}, "E030"},
		{"server frame", func() {
			c.send(&protocol.Frame{Type: protocol.FrameHello})
		}, "E030"},
		{"undeclared property", func() {
			c.send(&protocol.Frame{Type: protocol.FrameAssign, Props: map[string]any{"nope": 1}})
		}, "E001"},
		{"bad attribute", func() {
			c.send(&protocol.Frame{Type: protocol.FrameAttribute, Attribute: &protocol.Attribute{Name: "count", Value: strp("abc")}})
		}, "E010"},
	}
	for _, tt := range tests {
		tt.send()
		f := c.readUntil(isError)
		if f.Error.Code != tt.code {
			t.Errorf("%s: error code = %q (%s), want %s", tt.name, f.Error.Code, f.Error.Message, tt.code)
		}
	}
}

func TestSessionForwardsHostEvents(t *testing.T) {
	_, ts := newTestServer(t, nil)
	c := dial(t, ts.URL+"/ws/x-counter", protocol.JSON)
	hids := buttonHIDs(c.read().HTML)

	c.send(&protocol.Frame{Type: protocol.FrameEvent, Event: &protocol.Event{Type: "click", HID: hids["emit"]}})
	f := c.readUntil(func(f *protocol.Frame) bool { return f.Type == protocol.FrameEvent })
	if f.Event.Type != "pressed" || f.Event.Detail != "ok" {
		t.Errorf("event = %+v", f.Event)
	}
}

func TestSessionCBOR(t *testing.T) {
	_, ts := newTestServer(t, &Config{Encoding: "cbor"})
	c := dial(t, ts.URL+"/ws/x-counter", protocol.CBOR)

	hello := c.read()
	if hello.Type != protocol.FrameHello {
		t.Fatalf("hello = %+v", hello)
	}
	c.send(&protocol.Frame{Type: protocol.FrameAssign, Props: map[string]any{"count": 4}})
	c.readUntil(hasText("4"))
}

func TestSessionUnknownTag(t *testing.T) {
	_, ts := newTestServer(t, nil)
	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws/x-missing"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("Dial() succeeded for an unknown tag")
	}
	if resp == nil || resp.StatusCode != http.StatusNotFound {
		t.Errorf("response = %v, want 404", resp)
	}
}

func TestSessionClosesOnDisconnect(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	c := dial(t, ts.URL+"/ws/x-counter", protocol.JSON)
	hello := c.read()

	waitFor(t, func() bool { return srv.Sessions().Count() == 1 })
	s := srv.Sessions().Get(hello.Session)
	c.conn.Close()

	waitFor(t, func() bool { return srv.Sessions().Count() == 0 })
	<-s.Done()
	waitFor(t, func() bool { return s.Context().Err() != nil })
	if stats := srv.Sessions().Stats(); stats.TotalCreated != 1 || stats.TotalClosed != 1 || stats.Peak != 1 {
		t.Errorf("Stats() = %+v", stats)
	}
}

func TestShutdownClosesSessions(t *testing.T) {
	srv, ts := newTestServer(t, nil)
	c := dial(t, ts.URL+"/ws/x-counter", protocol.JSON)
	c.read()
	waitFor(t, func() bool { return srv.Sessions().Count() == 1 })

	if err := srv.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if n := srv.Sessions().Count(); n != 0 {
		t.Errorf("Count() = %d after Shutdown", n)
	}
}
