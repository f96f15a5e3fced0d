package services

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"mindcare-backend/internal/models"
	"mindcare-backend/internal/sentiment"
)

const (
	historyTurns      = 10
	maxSessionsListed = 50
)

type sessionRepository interface {
	Create(ctx context.Context, userID *uuid.UUID) (*models.ChatSession, error)
	Ensure(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*models.ChatSession, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.ChatSession, error)
	ListIDsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]string, error)
}

type historyRepository interface {
	History(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.ChatMessage, error)
}

// chatLogSink accepts turns for best-effort persistence.
type chatLogSink interface {
	Enqueue(ctx context.Context, entry *models.ChatLog)
}

type replyPublisher interface {
	PublishReply(ctx context.Context, userID uuid.UUID, event models.ChatReplyEvent)
}

type ChatService struct {
	sessions  sessionRepository
	history   historyRepository
	logs      chatLogSink
	publisher replyPublisher
	providers *ProviderRegistry
}

func NewChatService(
	sessions sessionRepository,
	history historyRepository,
	logs chatLogSink,
	publisher replyPublisher,
	providers *ProviderRegistry,
) *ChatService {
	return &ChatService{
		sessions:  sessions,
		history:   history,
		logs:      logs,
		publisher: publisher,
		providers: providers,
	}
}

// Chat answers one user message. Provider failures degrade to the keyword
// fallback and are never returned to the caller.
func (s *ChatService) Chat(ctx context.Context, userID *uuid.UUID, req models.ChatRequest) (*models.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, &ValidationError{Fields: map[string]string{"message": "Message is required"}}
	}

	providerName, provider, err := s.providers.Resolve(req.Provider)
	if err != nil {
		return nil, err
	}

	lang := normalizeLang(req.Lang)

	session, err := s.resolveSession(ctx, userID, req.SessionID)
	if err != nil {
		return nil, err
	}

	history, err := s.history.History(ctx, session.ID, historyTurns)
	if err != nil {
		log.Printf("[chat] failed to load history for session %s: %v", session.ID, err)
		history = nil
	}

	s.logs.Enqueue(ctx, &models.ChatLog{
		SessionID: session.ID,
		Role:      models.RoleUser,
		Content:   message,
		Provider:  providerName,
		Lang:      lang,
	})

	reply := ""
	if provider != nil {
		reply, err = provider.Reply(ctx, Prompt{
			System:  buildSystemPrompt(lang),
			History: history,
			Message: message,
			Lang:    lang,
		})
		if err != nil {
			log.Printf("[chat] provider %s failed: %v", providerName, err)
			reply = ""
		}
		reply = strings.TrimSpace(reply)
	}
	if reply == "" {
		reply = FallbackReply(message)
	}

	mood := sentiment.Analyze(message, reply).Label

	s.logs.Enqueue(ctx, &models.ChatLog{
		SessionID: session.ID,
		Role:      models.RoleAssistant,
		Content:   reply,
		Provider:  providerName,
		Lang:      lang,
		Sentiment: string(mood),
	})

	if userID != nil && s.publisher != nil {
		s.publisher.PublishReply(ctx, *userID, models.ChatReplyEvent{
			SessionID: session.ID.String(),
			Reply:     reply,
			Sentiment: string(mood),
		})
	}

	return &models.ChatResponse{
		Reply:     reply,
		SessionID: session.ID.String(),
		Sentiment: string(mood),
		Provider:  providerName,
	}, nil
}

func (s *ChatService) resolveSession(ctx context.Context, userID *uuid.UUID, rawID string) (*models.ChatSession, error) {
	rawID = strings.TrimSpace(rawID)
	if rawID == "" {
		return s.sessions.Create(ctx, userID)
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"session_id": "Invalid session id"}}
	}

	session, err := s.sessions.Ensure(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if session.UserID != nil && (userID == nil || *session.UserID != *userID) {
		return nil, &ForbiddenError{Message: "Session belongs to another user"}
	}

	return session, nil
}

// NewChat starts a fresh session and returns its id.
func (s *ChatService) NewChat(ctx context.Context, userID *uuid.UUID) (string, error) {
	session, err := s.sessions.Create(ctx, userID)
	if err != nil {
		return "", err
	}
	return session.ID.String(), nil
}

// Sessions lists the user's session ids, most recently active first.
func (s *ChatService) Sessions(ctx context.Context, userID uuid.UUID) ([]string, error) {
	return s.sessions.ListIDsByUser(ctx, userID, maxSessionsListed)
}

// History returns every turn of a session owned by userID.
func (s *ChatService) History(ctx context.Context, userID uuid.UUID, rawID string) ([]models.ChatMessage, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, &ValidationError{Fields: map[string]string{"session_id": "Invalid session id"}}
	}

	session, err := s.sessions.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Session not found"}
		}
		return nil, err
	}

	if session.UserID == nil || *session.UserID != userID {
		return nil, &ForbiddenError{Message: "You do not have access to this session"}
	}

	return s.history.History(ctx, session.ID, 0)
}

// normalizeLang maps anything outside the supported languages to English.
func normalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	switch lang {
	case "en", "hi", "mr":
		return lang
	default:
		return "en"
	}
}
