package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/parlorchat/parlor/backend/internal/model/chat"
)

// MemoryStore keeps message logs in process memory, suitable for early
// iterations and tests. Slice order is the per-session creation order, so
// equal timestamps still resolve to insertion order.
type MemoryStore struct {
	mu       sync.RWMutex
	messages map[string][]chat.Message
}

// NewMemoryStore bootstraps an empty in-memory message store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		messages: make(map[string][]chat.Message),
	}
}

// Append adds a message to the session log.
func (s *MemoryStore) Append(_ context.Context, sessionID, role, content string) (chat.Message, error) {
	if err := validateAppend(sessionID, role, content); err != nil {
		return chat.Message{}, err
	}

	// ID and timestamp are assigned under the lock so stamp order always
	// matches insertion order.
	s.mu.Lock()
	message := chat.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	s.messages[sessionID] = append(s.messages[sessionID], message)
	s.mu.Unlock()

	return message, nil
}

// ListBySession returns a copy of the session's message log.
func (s *MemoryStore) ListBySession(_ context.Context, sessionID string) ([]chat.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messages := s.messages[sessionID]
	copied := make([]chat.Message, len(messages))
	copy(copied, messages)
	return copied, nil
}
