package session

import "github.com/jonathan/resume-review/internal/types"

// EventType names a session event
type EventType string

// Event types
const (
	EventSuggestions EventType = "suggestions"
)

const subscriberBuffer = 16

// Event reports an asynchronous change to the session
type Event struct {
	Type        EventType     `json:"type"`
	RoleKey     types.RoleKey `json:"role_key"`
	Count       int           `json:"count"`
	Unavailable bool          `json:"unavailable,omitempty"`
	Error       string        `json:"error,omitempty"`
}

// Subscribe returns a channel of session events and a function that ends the
// subscription. Slow subscribers miss events rather than stall the session.
func (s *Session) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, subscriberBuffer)

	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		close(ch)
		return ch, func() {}
	}

	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subsMu.Unlock()

	return ch, func() {
		s.subsMu.Lock()
		defer s.subsMu.Unlock()
		if c, ok := s.subs[id]; ok {
			close(c)
			delete(s.subs, id)
		}
	}
}

func (s *Session) publish(ev Event) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
