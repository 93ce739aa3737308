package server

import (
	"time"

	"github.com/gorilla/websocket"
)

// ReadLoop continuously reads frames from the WebSocket connection and
// queues them for the event loop. Frames that fail to decode are answered
// with an error frame. This method blocks until the connection is closed.
func (s *Session) ReadLoop() {
	defer s.Close()

	s.conn.SetReadLimit(s.config.MaxMessageSize)
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
	})

	for {
		s.conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))

		_, msg, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				s.logger.Error("read error", "error", err)
			}
			return
		}
		s.bytesRecv.Add(uint64(len(msg)))

		frame, err := s.codec.Decode(msg)
		if err != nil {
			s.logger.Warn("frame decode error", "error", err)
			s.sendError(err)
			continue
		}

		if err := s.QueueFrame(frame); err != nil {
			s.sendError(&SessionError{SessionID: s.ID, Op: "queue " + string(frame.Type), Err: err})
		}
	}
}

// WriteLoop sends heartbeat pings until the session is closed.
func (s *Session) WriteLoop() {
	ticker := time.NewTicker(s.config.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := s.sendPing(); err != nil {
				s.logger.Debug("ping failed", "error", err)
				return
			}

		case <-s.done:
			return
		}
	}
}

// EventLoop applies queued frames to the element one at a time. When the
// session closes it disconnects the element.
func (s *Session) EventLoop() {
	for {
		select {
		case f := <-s.inbound:
			s.handleFrame(f)

		case <-s.done:
			if s.element != nil {
				s.element.DisconnectedCallback()
			}
			return
		}
	}
}
