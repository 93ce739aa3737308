package server

import (
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
)

// SessionManager tracks all open sessions.
type SessionManager struct {
	sessions map[string]*Session
	mu       sync.RWMutex

	// Metrics
	totalCreated atomic.Uint64
	totalClosed  atomic.Uint64
	peakSessions int

	// Callbacks
	onSessionOpen  func(*Session)
	onSessionClose func(*Session)

	logger *slog.Logger
}

// ManagerStats contains session manager statistics.
type ManagerStats struct {
	Active       int    `json:"active"`
	TotalCreated uint64 `json:"totalCreated"`
	TotalClosed  uint64 `json:"totalClosed"`
	Peak         int    `json:"peak"`
}

// NewSessionManager creates an empty session manager.
func NewSessionManager(logger *slog.Logger) *SessionManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionManager{
		sessions: make(map[string]*Session),
		logger:   logger.With("component", "session_manager"),
	}
}

// SetOnSessionOpen sets a callback run after a session is registered.
func (sm *SessionManager) SetOnSessionOpen(fn func(*Session)) {
	sm.onSessionOpen = fn
}

// SetOnSessionClose sets a callback run after a session is removed.
func (sm *SessionManager) SetOnSessionClose(fn func(*Session)) {
	sm.onSessionClose = fn
}

// Register adds s and removes it again when it closes.
func (sm *SessionManager) Register(s *Session) {
	sm.mu.Lock()
	sm.sessions[s.ID] = s
	if n := len(sm.sessions); n > sm.peakSessions {
		sm.peakSessions = n
	}
	sm.mu.Unlock()

	sm.totalCreated.Add(1)
	s.onClose = sm.remove
	sm.logger.Debug("session registered", "session_id", s.ID, "tag", s.Tag)

	if sm.onSessionOpen != nil {
		sm.onSessionOpen(s)
	}
}

func (sm *SessionManager) remove(s *Session) {
	sm.mu.Lock()
	_, ok := sm.sessions[s.ID]
	delete(sm.sessions, s.ID)
	sm.mu.Unlock()
	if !ok {
		return
	}

	sm.totalClosed.Add(1)
	if sm.onSessionClose != nil {
		sm.onSessionClose(s)
	}
}

// Get returns a session by ID, or nil.
func (sm *SessionManager) Get(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// Count returns the number of open sessions.
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// Sessions returns the open sessions ordered by ID.
func (sm *SessionManager) Sessions() []*Session {
	sm.mu.RLock()
	out := make([]*Session, 0, len(sm.sessions))
	for _, s := range sm.sessions {
		out = append(out, s)
	}
	sm.mu.RUnlock()

	slices.SortFunc(out, func(a, b *Session) int { return strings.Compare(a.ID, b.ID) })
	return out
}

// CloseAll closes every open session.
func (sm *SessionManager) CloseAll() {
	for _, s := range sm.Sessions() {
		s.Close()
	}
}

// Stats returns session manager statistics.
func (sm *SessionManager) Stats() ManagerStats {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return ManagerStats{
		Active:       len(sm.sessions),
		TotalCreated: sm.totalCreated.Load(),
		TotalClosed:  sm.totalClosed.Load(),
		Peak:         sm.peakSessions,
	}
}
