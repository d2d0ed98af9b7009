package conversation

import (
	"context"
	"sync"

	"github.com/mohammad-safakhou/hrdesk/internal/agent"
)

// InMemoryStore keeps session windows in process memory. Suited to the CLI
// and to tests; server deployments that need durability use the Redis store.
type InMemoryStore struct {
	mu       sync.RWMutex
	window   int
	sessions map[string][]agent.Message
}

func NewInMemoryStore(window int) *InMemoryStore {
	if window <= 0 {
		window = DefaultWindow
	}
	return &InMemoryStore{window: window, sessions: make(map[string][]agent.Message)}
}

func (s *InMemoryStore) History(_ context.Context, sessionID string) ([]agent.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.sessions[sessionID]
	out := make([]agent.Message, len(stored))
	copy(out, stored)
	return out, nil
}

func (s *InMemoryStore) Append(_ context.Context, sessionID string, messages ...agent.Message) error {
	if len(messages) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	window := append(s.sessions[sessionID], messages...)
	if len(window) > s.window {
		trimmed := make([]agent.Message, s.window)
		copy(trimmed, window[len(window)-s.window:])
		window = trimmed
	}
	s.sessions[sessionID] = window
	return nil
}
