package chat

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/parlorchat/parlor/backend/internal/model/chat"
	"github.com/parlorchat/parlor/backend/internal/store"
)

// DefaultCompletionTimeout bounds the provider round trip when the config
// does not override it.
const DefaultCompletionTimeout = 60 * time.Second

// Completer is the completion gateway the orchestrator drives. It receives
// the full ordered session history and returns a single completion.
type Completer interface {
	Complete(ctx context.Context, history []chat.Message) (string, error)
}

// Service orchestrates one conversation turn: persist the user message, load
// the session history, request a completion, persist the assistant message.
type Service struct {
	store             store.Store
	completer         Completer
	completionTimeout time.Duration
}

// NewService wires the orchestrator. completer may be nil when no provider is
// configured; turn submission then fails while history reads keep working.
func NewService(messageStore store.Store, completer Completer, completionTimeout time.Duration) *Service {
	if completionTimeout <= 0 {
		completionTimeout = DefaultCompletionTimeout
	}
	return &Service{
		store:             messageStore,
		completer:         completer,
		completionTimeout: completionTimeout,
	}
}

// SubmitTurn runs one full request/response cycle and returns the persisted
// pair. When the completion fails, the already-persisted user message stays
// in the session history so the conversation can continue without resubmitting.
func (s *Service) SubmitTurn(ctx context.Context, sessionID, content string) (chat.Turn, error) {
	if strings.TrimSpace(sessionID) == "" {
		return chat.Turn{}, fmt.Errorf("%w: session id is required", chat.ErrValidation)
	}
	if strings.TrimSpace(content) == "" {
		return chat.Turn{}, fmt.Errorf("%w: content is required", chat.ErrValidation)
	}
	if s.completer == nil {
		return chat.Turn{}, fmt.Errorf("%w: no completion provider configured", chat.ErrProvider)
	}

	userMessage, err := s.store.Append(ctx, sessionID, chat.RoleUser, content)
	if err != nil {
		return chat.Turn{}, err
	}

	history, err := s.store.ListBySession(ctx, sessionID)
	if err != nil {
		return chat.Turn{}, err
	}

	completionCtx, cancel := context.WithTimeout(ctx, s.completionTimeout)
	defer cancel()

	completion, err := s.completer.Complete(completionCtx, history)
	if err != nil {
		log.Printf("[chat] completion failed for session=%s: %v", sessionID, err)
		return chat.Turn{}, err
	}

	// The user message is committed; stop before the assistant write if the
	// caller has gone away, without rolling anything back. The context error
	// keeps its identity so callers can tell an abort from a provider fault.
	if err := ctx.Err(); err != nil {
		return chat.Turn{}, fmt.Errorf("turn cancelled before assistant write: %w", err)
	}

	assistantMessage, err := s.store.Append(ctx, sessionID, chat.RoleAssistant, completion)
	if err != nil {
		return chat.Turn{}, err
	}

	return chat.Turn{
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
	}, nil
}

// History returns the session's ordered messages. Unknown sessions yield an
// empty slice.
func (s *Service) History(ctx context.Context, sessionID string) ([]chat.Message, error) {
	return s.store.ListBySession(ctx, sessionID)
}
