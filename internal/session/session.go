package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"pdfchat/internal/domain"
)

// Session holds the append-only message history for one logical chat.
// It is safe for concurrent use.
type Session struct {
	ID string

	mu       sync.RWMutex
	messages []domain.Message
}

// Append adds a message to the session history. The timestamp is filled in
// when unset.
func (s *Session) Append(msg domain.Message) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
}

// Recent returns the most recent maxTurns exchanges (a user message plus the
// assistant reply counts as one turn), oldest first. maxTurns <= 0 returns nil.
func (s *Session) Recent(maxTurns int) []domain.Message {
	if maxTurns <= 0 {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	maxMessages := maxTurns * 2
	start := len(s.messages) - maxMessages
	if start < 0 {
		start = 0
	}

	recent := make([]domain.Message, len(s.messages)-start)
	copy(recent, s.messages[start:])
	return recent
}

// Len returns the number of messages in the session.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Store holds sessions keyed by ID for the lifetime of the process. Sessions
// are isolated per caller; there is no persistence across restarts.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Get returns the session with the given ID, creating it on first use.
// An empty ID creates a fresh session with a generated ID.
func (st *Store) Get(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()

	if id == "" {
		id = uuid.New().String()
	}
	if s, ok := st.sessions[id]; ok {
		return s
	}
	s := &Session{ID: id}
	st.sessions[id] = s
	return s
}
