package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	chatModel "github.com/parlorchat/parlor/backend/internal/model/chat"
	chatService "github.com/parlorchat/parlor/backend/internal/service/chat"
	"github.com/parlorchat/parlor/backend/pkg/utils"
)

// Handler exposes the turn operations over HTTP.
type Handler struct {
	chatSvc *chatService.Service
}

// New creates the turn handler.
func New(chatSvc *chatService.Service) *Handler {
	return &Handler{chatSvc: chatSvc}
}

// RegisterRoutes mounts the turn routes on the router.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/turns", h.handleSubmitTurn)
	r.Get("/turns/{sessionID}", h.handleGetHistory)
}

// handleSubmitTurn runs one conversation turn and returns the persisted pair.
func (h *Handler) handleSubmitTurn(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
		Content   string `json:"content"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	turn, err := h.chatSvc.SubmitTurn(r.Context(), payload.SessionID, payload.Content)
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, turn)
}

// handleGetHistory returns the session's ordered messages, possibly empty.
func (h *Handler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	messages, err := h.chatSvc.History(r.Context(), sessionID)
	if err != nil {
		utils.RespondError(w, statusFor(err), err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, messages)
}

// statusFor maps the error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, chatModel.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, chatModel.ErrProvider), errors.Is(err, chatModel.ErrEmptyCompletion):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
