package chat

import "time"

// Role values allowed on a persisted message.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one half of a conversation turn. Messages are append-only: once
// written they are never updated or deleted.
type Message struct {
	ID        string    `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"timestamp"`
}

// Turn pairs a user message with the assistant message generated for it.
type Turn struct {
	UserMessage      Message `json:"userMessage"`
	AssistantMessage Message `json:"assistantMessage"`
}

// ValidRole reports whether role is one of the two persistable roles.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAssistant
}
