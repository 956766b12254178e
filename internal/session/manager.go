package session

import (
	"sync"

	"github.com/google/uuid"
	"github.com/jonathan/resume-review/internal/suggest"
)

// Manager keeps the live sessions of a server process
type Manager struct {
	suggester suggest.Suggester
	feedback  FeedbackEmitter
	opts      Options

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewManager creates a manager whose sessions share one suggester and feedback emitter
func NewManager(suggester suggest.Suggester, feedback FeedbackEmitter, opts Options) *Manager {
	return &Manager{
		suggester: suggester,
		feedback:  feedback,
		opts:      opts.withDefaults(),
		sessions:  make(map[uuid.UUID]*Session),
	}
}

// Create starts a new session and registers it
func (m *Manager) Create(p Params) *Session {
	s := New(p, m.suggester, m.feedback, m.opts)

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.opts.Logger.Info("session created", "session_id", s.ID, "roles", len(s.roles))
	return s
}

// Get returns a live session
func (m *Manager) Get(id uuid.UUID) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete closes and forgets a session. It reports whether the session existed.
func (m *Manager) Delete(id uuid.UUID) bool {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

// Len returns the number of live sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Close closes every session
func (m *Manager) Close() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[uuid.UUID]*Session)
	m.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
