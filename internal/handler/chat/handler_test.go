package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	chatModel "github.com/parlorchat/parlor/backend/internal/model/chat"
	chatservice "github.com/parlorchat/parlor/backend/internal/service/chat"
	"github.com/parlorchat/parlor/backend/internal/store"
)

type completerFunc func(ctx context.Context, history []chatModel.Message) (string, error)

func (f completerFunc) Complete(ctx context.Context, history []chatModel.Message) (string, error) {
	return f(ctx, history)
}

func setupRouter(completer chatservice.Completer) *chi.Mux {
	chatSvc := chatservice.NewService(store.NewMemoryStore(), completer, 0)
	handler := New(chatSvc)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func postTurn(t *testing.T, r http.Handler, body map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/turns", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func getHistory(t *testing.T, r http.Handler, sessionID string) []chatModel.Message {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/turns/"+sessionID, nil)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("history request failed with %d: %s", resp.Code, resp.Body.String())
	}

	var messages []chatModel.Message
	if err := json.Unmarshal(resp.Body.Bytes(), &messages); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	return messages
}

func TestSubmitTurnRoundTrip(t *testing.T) {
	r := setupRouter(completerFunc(func(context.Context, []chatModel.Message) (string, error) {
		return "hi there", nil
	}))

	resp := postTurn(t, r, map[string]string{"sessionId": "s1", "content": "hello"})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var turn chatModel.Turn
	if err := json.Unmarshal(resp.Body.Bytes(), &turn); err != nil {
		t.Fatalf("failed to decode turn: %v", err)
	}
	if turn.UserMessage.Role != chatModel.RoleUser || turn.UserMessage.Content != "hello" {
		t.Fatalf("unexpected user message: %+v", turn.UserMessage)
	}
	if turn.AssistantMessage.Role != chatModel.RoleAssistant || turn.AssistantMessage.Content != "hi there" {
		t.Fatalf("unexpected assistant message: %+v", turn.AssistantMessage)
	}

	messages := getHistory(t, r, "s1")
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages in history, got %d", len(messages))
	}
	if messages[0].Role != chatModel.RoleUser || messages[1].Role != chatModel.RoleAssistant {
		t.Fatalf("history out of order: %+v", messages)
	}
}

func TestSubmitTurnEmptyContent(t *testing.T) {
	r := setupRouter(completerFunc(func(context.Context, []chatModel.Message) (string, error) {
		return "unreachable", nil
	}))

	resp := postTurn(t, r, map[string]string{"sessionId": "s2", "content": ""})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body: %v", err)
	}
	if body["error"] == "" {
		t.Fatal("expected an error message in the body")
	}

	if messages := getHistory(t, r, "s2"); len(messages) != 0 {
		t.Fatalf("rejected turn must not persist, got %d messages", len(messages))
	}
}

func TestSubmitTurnProviderFailure(t *testing.T) {
	r := setupRouter(completerFunc(func(context.Context, []chatModel.Message) (string, error) {
		return "", fmt.Errorf("%w: upstream exploded", chatModel.ErrProvider)
	}))

	resp := postTurn(t, r, map[string]string{"sessionId": "s3", "content": "hello"})
	if resp.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", resp.Code)
	}

	messages := getHistory(t, r, "s3")
	if len(messages) != 1 {
		t.Fatalf("expected only the user message persisted, got %d", len(messages))
	}
	if messages[0].Role != chatModel.RoleUser || messages[0].Content != "hello" {
		t.Fatalf("unexpected persisted message: %+v", messages[0])
	}
}

func TestSubmitTurnMalformedBody(t *testing.T) {
	r := setupRouter(nil)

	req := httptest.NewRequest(http.MethodPost, "/turns", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestGetHistoryEmptySession(t *testing.T) {
	r := setupRouter(nil)

	if messages := getHistory(t, r, "never-used"); len(messages) != 0 {
		t.Fatalf("expected empty history, got %d messages", len(messages))
	}
}
