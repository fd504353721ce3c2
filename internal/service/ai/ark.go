package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	"github.com/parlorchat/parlor/backend/internal/model/chat"
)

// ArkCompleter produces completions through an Ark chat model behind an eino
// chain. The chain is compiled once at construction and reused per call.
type ArkCompleter struct {
	chatModel model.ChatModel
	chain     compose.Runnable[map[string]any, *schema.Message]
}

// NewArkCompleter compiles the completion chain around the provided model.
func NewArkCompleter(ctx context.Context, chatModel model.ChatModel) (*ArkCompleter, error) {
	promptTemplate := prompt.FromMessages(
		schema.FString,
		schema.MessagesPlaceholder("history", true),
		schema.UserMessage("{query}"),
	)

	chain := compose.NewChain[map[string]any, *schema.Message]()
	chain.AppendChatTemplate(promptTemplate)
	chain.AppendChatModel(chatModel)

	runnable, err := chain.Compile(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compile completion chain: %w", err)
	}

	return &ArkCompleter{chatModel: chatModel, chain: runnable}, nil
}

// Complete runs one completion over the full session history. The history
// must be non-empty and end with a user message; the last message feeds the
// chain's query slot and everything before it feeds the history placeholder.
func (c *ArkCompleter) Complete(ctx context.Context, history []chat.Message) (string, error) {
	prior, query, err := splitHistory(history)
	if err != nil {
		return "", err
	}

	response, err := c.chain.Invoke(ctx, map[string]any{
		"history": toSchemaMessages(prior),
		"query":   query,
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", chat.ErrProvider, err)
	}

	content := strings.TrimSpace(response.Content)
	if content == "" {
		return "", chat.ErrEmptyCompletion
	}

	log.Printf("[ai] ark completion generated, history=%d length=%d", len(history), len(content))
	return content, nil
}

// splitHistory separates the trailing user message from the context that
// precedes it.
func splitHistory(history []chat.Message) ([]chat.Message, string, error) {
	if len(history) == 0 {
		return nil, "", fmt.Errorf("%w: history is empty", chat.ErrValidation)
	}
	last := history[len(history)-1]
	if last.Role != chat.RoleUser {
		return nil, "", fmt.Errorf("%w: history must end with a user message", chat.ErrValidation)
	}
	return history[:len(history)-1], last.Content, nil
}

func toSchemaMessages(messages []chat.Message) []*schema.Message {
	if len(messages) == 0 {
		return nil
	}

	converted := make([]*schema.Message, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case chat.RoleUser:
			converted = append(converted, schema.UserMessage(msg.Content))
		case chat.RoleAssistant:
			converted = append(converted, schema.AssistantMessage(msg.Content, nil))
		}
	}
	return converted
}
