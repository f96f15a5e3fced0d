package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one entry of a session's history as returned by
// GET /api/history/{session_id}.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload sent to POST /api/chat.
type ChatRequest struct {
	Message   string `json:"message"`
	Provider  string `json:"provider,omitempty"`
	Lang      string `json:"lang,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the reply from the assistant.
type ChatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"session_id,omitempty"`
	Sentiment string `json:"sentiment,omitempty"`
	Provider  string `json:"provider,omitempty"`
}

type NewChatResponse struct {
	SessionID string `json:"session_id"`
}

type TranscribeResponse struct {
	Transcript string `json:"transcript"`
}

type ChatSession struct {
	ID           uuid.UUID  `json:"id"`
	UserID       *uuid.UUID `json:"user_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	LastActiveAt time.Time  `json:"last_active_at"`
}

// ChatLog is a persisted turn. Entries travel through the chat-log queue as JSON.
type ChatLog struct {
	ID        int64     `json:"id,omitempty"`
	SessionID uuid.UUID `json:"session_id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Provider  string    `json:"provider,omitempty"`
	Lang      string    `json:"lang,omitempty"`
	Sentiment string    `json:"sentiment,omitempty"`
	CreatedAt time.Time `json:"ts"`
}

// ChatReplyEvent is pushed over the websocket to the user's other connections.
type ChatReplyEvent struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
	Sentiment string `json:"sentiment,omitempty"`
}
