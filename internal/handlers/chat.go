package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mindcare-backend/internal/middleware"
	"mindcare-backend/internal/models"
)

type chatService interface {
	Chat(ctx context.Context, userID *uuid.UUID, req models.ChatRequest) (*models.ChatResponse, error)
	NewChat(ctx context.Context, userID *uuid.UUID) (string, error)
	Sessions(ctx context.Context, userID uuid.UUID) ([]string, error)
	History(ctx context.Context, userID uuid.UUID, sessionID string) ([]models.ChatMessage, error)
}

type ChatHandler struct {
	chatService chatService
}

func NewChatHandler(chatService chatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat answers POST /api/chat. Authentication is optional.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	resp, err := h.chatService.Chat(r.Context(), middleware.OptionalUserID(r.Context()), req)
	if err != nil {
		log.Printf("[chat] request failed: %v", err)
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *ChatHandler) NewChat(w http.ResponseWriter, r *http.Request) {
	sessionID, err := h.chatService.NewChat(r.Context(), middleware.OptionalUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.NewChatResponse{SessionID: sessionID})
}

func (h *ChatHandler) Sessions(w http.ResponseWriter, r *http.Request) {
	ids, err := h.chatService.Sessions(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ids)
}

func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	turns, err := h.chatService.History(r.Context(), middleware.GetUserID(r.Context()), chi.URLParam(r, "session_id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, turns)
}
