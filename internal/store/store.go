package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/parlorchat/parlor/backend/internal/model/chat"
)

// Store is the session-keyed append-only message log. Implementations must be
// safe for concurrent use and must keep per-session creation order stable.
type Store interface {
	// Append validates and persists a new message, assigning its ID and
	// timestamp. The message is visible to subsequent reads for the session.
	Append(ctx context.Context, sessionID, role, content string) (chat.Message, error)

	// ListBySession returns every message for the session in creation order.
	// A session with no messages yields an empty slice, not an error.
	ListBySession(ctx context.Context, sessionID string) ([]chat.Message, error)
}

// validateAppend enforces the shared append preconditions before any
// implementation touches its backing storage.
func validateAppend(sessionID, role, content string) error {
	if strings.TrimSpace(sessionID) == "" {
		return fmt.Errorf("%w: session id is required", chat.ErrValidation)
	}
	if !chat.ValidRole(role) {
		return fmt.Errorf("%w: unknown role %q", chat.ErrValidation, role)
	}
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content is required", chat.ErrValidation)
	}
	return nil
}
