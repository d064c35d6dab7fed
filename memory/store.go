package memory

import (
	"context"
	"errors"
	"sync"
)

// ErrEmptySessionID is returned when a store is addressed without a session id.
var ErrEmptySessionID = errors.New("memory: empty session id")

// Store maps a session id to its ordered message history.
type Store interface {
	// Get returns the session history oldest first; unknown sessions yield an empty slice.
	Get(ctx context.Context, sessionID string) ([]Message, error)
	// Append adds msgs to the end of the session history as one unit.
	Append(ctx context.Context, sessionID string, msgs ...Message) error
}

// InMemoryStore keeps histories for the lifetime of the process.
type InMemoryStore struct {
	mu       sync.RWMutex
	sessions map[string][]Message
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{sessions: make(map[string][]Message)}
}

func (s *InMemoryStore) Get(ctx context.Context, sessionID string) ([]Message, error) {
	if sessionID == "" {
		return nil, ErrEmptySessionID
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.sessions[sessionID]), nil
}

func (s *InMemoryStore) Append(ctx context.Context, sessionID string, msgs ...Message) error {
	if sessionID == "" {
		return ErrEmptySessionID
	}
	if len(msgs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = append(s.sessions[sessionID], cloneAll(msgs)...)
	return nil
}

// Sessions lists the ids of all sessions with at least one message.
func (s *InMemoryStore) Sessions(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.sessions))
	for id := range s.sessions {
		ids = append(ids, id)
	}
	return ids, nil
}
