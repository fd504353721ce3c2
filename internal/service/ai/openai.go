package ai

import (
	"context"
	"fmt"
	"log"
	"strings"

	openaiapi "github.com/sashabaranov/go-openai"

	"github.com/parlorchat/parlor/backend/internal/model/chat"
)

// OpenAICompleter produces completions through the OpenAI chat completions
// API. One call per turn, no streaming, no internal retries.
type OpenAICompleter struct {
	api         *openaiapi.Client
	model       string
	maxTokens   int
	temperature float32
}

// OpenAIOptions carries the per-request knobs for the OpenAI provider.
type OpenAIOptions struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxTokens   int
	Temperature float32
}

// NewOpenAICompleter builds a completer over the official-API client.
func NewOpenAICompleter(opts OpenAIOptions) *OpenAICompleter {
	cfg := openaiapi.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	return &OpenAICompleter{
		api:         openaiapi.NewClientWithConfig(cfg),
		model:       opts.Model,
		maxTokens:   opts.MaxTokens,
		temperature: opts.Temperature,
	}
}

// Complete sends the full session history as-is and returns the single
// completion choice.
func (c *OpenAICompleter) Complete(ctx context.Context, history []chat.Message) (string, error) {
	if len(history) == 0 {
		return "", fmt.Errorf("%w: history is empty", chat.ErrValidation)
	}

	resp, err := c.api.CreateChatCompletion(ctx, openaiapi.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		Messages:    toAPIMessages(history),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", chat.ErrProvider, err)
	}

	if len(resp.Choices) == 0 {
		return "", chat.ErrEmptyCompletion
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", chat.ErrEmptyCompletion
	}

	log.Printf("[ai] openai completion generated, history=%d length=%d", len(history), len(content))
	return content, nil
}

func toAPIMessages(messages []chat.Message) []openaiapi.ChatCompletionMessage {
	converted := make([]openaiapi.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		converted = append(converted, openaiapi.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	return converted
}
