package server

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/dna-dev/dna/internal/errors"
	"github.com/dna-dev/dna/pkg/component"
	"github.com/dna-dev/dna/pkg/events"
	"github.com/dna-dev/dna/pkg/protocol"
	"github.com/dna-dev/dna/pkg/vdom"
)

// Session hosts one element for one WebSocket connection.
type Session struct {
	// Identity
	ID        string
	Tag       string
	CreatedAt time.Time

	// Connection
	conn   *websocket.Conn
	codec  protocol.Codec
	mu     sync.Mutex // Protects conn writes
	closed atomic.Bool

	// Patch sequence, incremented per patches frame
	sendSeq atomic.Uint64

	element *component.Element
	ctx     context.Context
	cancel  context.CancelFunc

	// Channels
	inbound chan *protocol.Frame
	done    chan struct{}

	config  *Config
	logger  *slog.Logger
	onClose func(*Session)

	// Metrics
	frameCount atomic.Uint64
	patchCount atomic.Uint64
	bytesSent  atomic.Uint64
	bytesRecv  atomic.Uint64
}

// SessionStats is a snapshot of session counters.
type SessionStats struct {
	ID        string
	Tag       string
	CreatedAt time.Time
	Frames    uint64
	Patches   uint64
	Seq       uint64
	BytesSent uint64
	BytesRecv uint64
}

// newSession creates a session for conn. The element is attached later.
func newSession(conn *websocket.Conn, tag string, codec protocol.Codec, config *Config, logger *slog.Logger) *Session {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		ID:        id,
		Tag:       tag,
		CreatedAt: time.Now(),
		conn:      conn,
		codec:     codec,
		ctx:       ctx,
		cancel:    cancel,
		inbound:   make(chan *protocol.Frame, config.MaxEventQueue),
		done:      make(chan struct{}),
		config:    config,
		logger:    logger.With("session_id", id, "tag", tag),
	}
}

// attach binds a connected element to the session. Later renders are
// sent as patches frames and the current tree is sent as a hello frame.
func (s *Session) attach(el *component.Element) error {
	s.element = el
	el.Realm().SetSink(s)
	return s.send(&protocol.Frame{
		Type:    protocol.FrameHello,
		Session: s.ID,
		Tag:     s.Tag,
		HTML:    el.HTML(true),
	})
}

// Element returns the hosted element.
func (s *Session) Element() *component.Element {
	return s.element
}

// Context is cancelled when the session closes.
func (s *Session) Context() context.Context {
	return s.ctx
}

// Apply sends reconciliation patches as one patches frame.
func (s *Session) Apply(patches []vdom.Patch) error {
	if len(patches) == 0 {
		return nil
	}
	f := protocol.NewPatches(s.sendSeq.Add(1), patches)
	if err := s.send(f); err != nil {
		return err
	}
	s.patchCount.Add(uint64(len(patches)))
	return nil
}

// emitEvent forwards events dispatched on the host to the client, unless
// a listener prevented their default action.
func (s *Session) emitEvent(evt *events.Event) {
	if evt.DefaultPrevented() {
		return
	}
	f := &protocol.Frame{
		Type:  protocol.FrameEvent,
		Event: &protocol.Event{Type: evt.Type, Detail: evt.Detail},
	}
	if err := s.send(f); err != nil {
		s.logger.Debug("event not sent", "event", evt.Type, "error", err)
	}
}

// sendError sends err as an error frame.
func (s *Session) sendError(err error) {
	if sendErr := s.send(protocol.NewError(err)); sendErr != nil {
		s.logger.Debug("error frame not sent", "error", sendErr)
	}
}

// send encodes f and writes it to the connection.
func (s *Session) send(f *protocol.Frame) error {
	data, err := s.codec.Encode(f)
	if err != nil {
		return &SessionError{SessionID: s.ID, Op: "encode " + string(f.Type), Err: err}
	}

	msgType := websocket.TextMessage
	if s.codec.Binary() {
		msgType = websocket.BinaryMessage
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	if s.conn == nil {
		return ErrNoConnection
	}

	s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
	if err := s.conn.WriteMessage(msgType, data); err != nil {
		s.logger.Error("write error", "error", err)
		return &SessionError{SessionID: s.ID, Op: "write " + string(f.Type), Err: err}
	}
	s.bytesSent.Add(uint64(len(data)))
	return nil
}

// sendPing sends a heartbeat ping to the client.
func (s *Session) sendPing() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed.Load() {
		return ErrSessionClosed
	}
	if s.conn == nil {
		return ErrNoConnection
	}
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.config.WriteTimeout))
}

// QueueFrame queues a decoded client frame for the event loop.
func (s *Session) QueueFrame(f *protocol.Frame) error {
	if s.closed.Load() {
		return ErrSessionClosed
	}
	select {
	case s.inbound <- f:
		return nil
	default:
		s.logger.Warn("event queue full, dropping frame", "type", f.Type)
		return ErrEventQueueFull
	}
}

// handleFrame applies one client frame to the element.
// It runs on the event loop only.
func (s *Session) handleFrame(f *protocol.Frame) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("frame panic", "panic", r, "stack", string(debug.Stack()))
			s.sendError(errors.Newf(errors.CategoryRuntime, "panic handling %s frame: %v", f.Type, r))
		}
	}()

	s.frameCount.Add(1)

	var err error
	switch f.Type {
	case protocol.FrameEvent:
		err = s.element.HandleEvent(s.ctx, f.Event.Type, f.Event.HID, f.Event.Detail)

	case protocol.FrameAttribute:
		if f.Attribute.Value == nil {
			err = s.element.RemoveAttribute(f.Attribute.Name)
		} else {
			err = s.element.SetAttribute(f.Attribute.Name, *f.Attribute.Value)
		}

	case protocol.FrameAssign:
		err = s.element.Assign(f.Props)

	default:
		err = errors.New(errors.CodeMalformedFrame).
			WithSubject(string(f.Type)).
			WithDetail("Clients may only send event, attribute and assign frames.")
	}

	if err == nil {
		return
	}
	s.logger.Warn("frame failed", "type", f.Type, "error", err)
	s.sendError(err)
	if errors.IsFatal(err) {
		s.Close()
	}
}

// Start starts all session loops.
func (s *Session) Start() {
	go s.ReadLoop()
	go s.WriteLoop()
	go s.EventLoop()
}

// Close closes the connection and stops the loops. The event loop
// disconnects the element on its way out.
func (s *Session) Close() {
	if s.closed.Swap(true) {
		return
	}
	s.cancel()
	close(s.done)

	if s.conn != nil {
		s.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second),
		)
		s.conn.Close()
	}

	s.logger.Info("session closed",
		"frames", s.frameCount.Load(),
		"patches", s.patchCount.Load(),
		"bytes_sent", s.bytesSent.Load(),
		"bytes_recv", s.bytesRecv.Load())

	if s.onClose != nil {
		s.onClose(s)
	}
}

// IsClosed returns whether the session is closed.
func (s *Session) IsClosed() bool {
	return s.closed.Load()
}

// Done returns a channel that's closed when the session is done.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Stats returns a snapshot of the session counters.
func (s *Session) Stats() SessionStats {
	return SessionStats{
		ID:        s.ID,
		Tag:       s.Tag,
		CreatedAt: s.CreatedAt,
		Frames:    s.frameCount.Load(),
		Patches:   s.patchCount.Load(),
		Seq:       s.sendSeq.Load(),
		BytesSent: s.bytesSent.Load(),
		BytesRecv: s.bytesRecv.Load(),
	}
}
