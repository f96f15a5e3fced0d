package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"mindcare-backend/internal/models"
)

type stubSessionRepo struct {
	sessions    map[uuid.UUID]*models.ChatSession
	created     int
	ensuredWith []uuid.UUID
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[uuid.UUID]*models.ChatSession)}
}

func (s *stubSessionRepo) Create(ctx context.Context, userID *uuid.UUID) (*models.ChatSession, error) {
	s.created++
	session := &models.ChatSession{ID: uuid.New(), UserID: userID}
	s.sessions[session.ID] = session
	return session, nil
}

func (s *stubSessionRepo) Ensure(ctx context.Context, id uuid.UUID, userID *uuid.UUID) (*models.ChatSession, error) {
	s.ensuredWith = append(s.ensuredWith, id)
	session, ok := s.sessions[id]
	if !ok {
		session = &models.ChatSession{ID: id, UserID: userID}
		s.sessions[id] = session
	} else if session.UserID == nil {
		session.UserID = userID
	}
	return session, nil
}

func (s *stubSessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.ChatSession, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return session, nil
}

func (s *stubSessionRepo) ListIDsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]string, error) {
	ids := []string{}
	for id, session := range s.sessions {
		if session.UserID != nil && *session.UserID == userID {
			ids = append(ids, id.String())
		}
	}
	return ids, nil
}

type stubHistoryRepo struct {
	turns     []models.ChatMessage
	lastLimit int
}

func (s *stubHistoryRepo) History(ctx context.Context, sessionID uuid.UUID, limit int) ([]models.ChatMessage, error) {
	s.lastLimit = limit
	return s.turns, nil
}

type stubLogSink struct {
	entries []*models.ChatLog
}

func (s *stubLogSink) Enqueue(ctx context.Context, entry *models.ChatLog) {
	s.entries = append(s.entries, entry)
}

type stubPublisher struct {
	events []models.ChatReplyEvent
	users  []uuid.UUID
}

func (s *stubPublisher) PublishReply(ctx context.Context, userID uuid.UUID, event models.ChatReplyEvent) {
	s.users = append(s.users, userID)
	s.events = append(s.events, event)
}

type stubProvider struct {
	name   string
	reply  string
	err    error
	prompt Prompt
	calls  int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Reply(ctx context.Context, prompt Prompt) (string, error) {
	s.calls++
	s.prompt = prompt
	return s.reply, s.err
}

type chatFixture struct {
	svc       *ChatService
	sessions  *stubSessionRepo
	history   *stubHistoryRepo
	logs      *stubLogSink
	publisher *stubPublisher
}

func newChatFixture(providers ...Provider) *chatFixture {
	f := &chatFixture{
		sessions:  newStubSessionRepo(),
		history:   &stubHistoryRepo{},
		logs:      &stubLogSink{},
		publisher: &stubPublisher{},
	}
	f.svc = NewChatService(f.sessions, f.history, f.logs, f.publisher, NewProviderRegistry(providers...))
	return f
}

func TestChatService_Chat_RejectsInvalidInput(t *testing.T) {
	f := newChatFixture(&stubProvider{name: ProviderGroq, reply: "ok"})

	tests := []struct {
		name  string
		req   models.ChatRequest
		field string
	}{
		{"empty message", models.ChatRequest{Message: "   "}, "message"},
		{"unknown provider", models.ChatRequest{Message: "hi", Provider: "claude"}, "provider"},
		{"malformed session", models.ChatRequest{Message: "hi", SessionID: "not-a-uuid"}, "session_id"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Chat(context.Background(), nil, tc.req)

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if _, ok := vErr.Fields[tc.field]; !ok {
				t.Fatalf("expected field %q in %v", tc.field, vErr.Fields)
			}
		})
	}

	if len(f.logs.entries) != 0 {
		t.Fatalf("rejected requests must not be logged")
	}
}

func TestChatService_Chat_UsesProviderAndLogsBothTurns(t *testing.T) {
	provider := &stubProvider{name: ProviderGroq, reply: "  Take a slow breath with me.  "}
	f := newChatFixture(provider)
	f.history.turns = []models.ChatMessage{
		{Role: models.RoleUser, Content: "earlier"},
		{Role: models.RoleAssistant, Content: "earlier reply"},
	}

	resp, err := f.svc.Chat(context.Background(), nil, models.ChatRequest{
		Message:  "I feel anxious about exams",
		Provider: "groq",
		Lang:     "mr",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if resp.Reply != "Take a slow breath with me." {
		t.Fatalf("unexpected reply %q", resp.Reply)
	}
	if resp.Provider != ProviderGroq {
		t.Fatalf("expected provider groq, got %q", resp.Provider)
	}
	if resp.Sentiment != "anxious" {
		t.Fatalf("expected anxious sentiment, got %q", resp.Sentiment)
	}
	if f.sessions.created != 1 {
		t.Fatalf("expected a new session, created=%d", f.sessions.created)
	}
	if _, err := uuid.Parse(resp.SessionID); err != nil {
		t.Fatalf("expected uuid session id, got %q", resp.SessionID)
	}

	if f.history.lastLimit != historyTurns {
		t.Fatalf("expected history limit %d, got %d", historyTurns, f.history.lastLimit)
	}
	if len(provider.prompt.History) != 2 {
		t.Fatalf("expected history passed to provider, got %d turns", len(provider.prompt.History))
	}
	if provider.prompt.System != buildSystemPrompt("mr") || provider.prompt.System == SafeSystemPrompt {
		t.Fatalf("expected Marathi directive in system prompt, got %q", provider.prompt.System)
	}

	if len(f.logs.entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(f.logs.entries))
	}
	if f.logs.entries[0].Role != models.RoleUser || f.logs.entries[1].Role != models.RoleAssistant {
		t.Fatalf("unexpected log order: %s, %s", f.logs.entries[0].Role, f.logs.entries[1].Role)
	}
	if f.logs.entries[1].Sentiment != "anxious" || f.logs.entries[1].Lang != "mr" {
		t.Fatalf("assistant log missing metadata: %+v", f.logs.entries[1])
	}
	if f.logs.entries[1].Content != resp.Reply {
		t.Fatalf("expected logged reply %q, got %q", resp.Reply, f.logs.entries[1].Content)
	}

	if len(f.publisher.events) != 0 {
		t.Fatalf("anonymous chats must not be published")
	}
}

func TestChatService_Chat_FallsBackOnProviderFailure(t *testing.T) {
	tests := []struct {
		name     string
		provider *stubProvider
	}{
		{"provider error", &stubProvider{name: ProviderGemini, err: errors.New("quota exceeded")}},
		{"empty reply", &stubProvider{name: ProviderGemini, reply: "   "}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newChatFixture(tc.provider)

			resp, err := f.svc.Chat(context.Background(), nil, models.ChatRequest{Message: "I am so stressed"})
			if err != nil {
				t.Fatalf("provider failures must not surface, got %v", err)
			}
			if resp.Reply != FallbackReply("I am so stressed") {
				t.Fatalf("expected fallback reply, got %q", resp.Reply)
			}
			if resp.Provider != ProviderGemini {
				t.Fatalf("expected default provider gemini, got %q", resp.Provider)
			}
		})
	}
}

func TestChatService_Chat_UnconfiguredProviderFallsBack(t *testing.T) {
	f := newChatFixture()

	resp, err := f.svc.Chat(context.Background(), nil, models.ChatRequest{Message: "hello", Provider: "grok"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Reply != FallbackReply("hello") {
		t.Fatalf("expected greeting fallback, got %q", resp.Reply)
	}
}

func TestChatService_Chat_SessionHandling(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	t.Run("unknown well-formed id is adopted", func(t *testing.T) {
		f := newChatFixture(&stubProvider{name: ProviderOllama, reply: "ok"})
		id := uuid.New()

		resp, err := f.svc.Chat(context.Background(), nil, models.ChatRequest{Message: "hi", SessionID: id.String()})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if resp.SessionID != id.String() {
			t.Fatalf("expected session %s, got %s", id, resp.SessionID)
		}
		if f.sessions.created != 0 {
			t.Fatalf("existing id must not create a new session")
		}
	})

	t.Run("owned session rejects other users", func(t *testing.T) {
		f := newChatFixture(&stubProvider{name: ProviderOllama, reply: "ok"})
		id := uuid.New()
		f.sessions.sessions[id] = &models.ChatSession{ID: id, UserID: &owner}

		for _, caller := range []*uuid.UUID{nil, &stranger} {
			_, err := f.svc.Chat(context.Background(), caller, models.ChatRequest{Message: "hi", SessionID: id.String()})
			var fErr *ForbiddenError
			if !errors.As(err, &fErr) {
				t.Fatalf("expected forbidden, got %v", err)
			}
		}
	})

	t.Run("authenticated reply is published", func(t *testing.T) {
		f := newChatFixture(&stubProvider{name: ProviderOllama, reply: "glad to hear it"})

		resp, err := f.svc.Chat(context.Background(), &owner, models.ChatRequest{Message: "I feel great today"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(f.publisher.events) != 1 || f.publisher.users[0] != owner {
			t.Fatalf("expected one event for owner, got %v", f.publisher.users)
		}
		if f.publisher.events[0].SessionID != resp.SessionID || f.publisher.events[0].Reply != resp.Reply {
			t.Fatalf("event does not match response: %+v", f.publisher.events[0])
		}
	})
}

func TestChatService_History(t *testing.T) {
	owner := uuid.New()
	f := newChatFixture()
	owned := uuid.New()
	anonymous := uuid.New()
	f.sessions.sessions[owned] = &models.ChatSession{ID: owned, UserID: &owner}
	f.sessions.sessions[anonymous] = &models.ChatSession{ID: anonymous}
	f.history.turns = []models.ChatMessage{{Role: models.RoleUser, Content: "hi"}}

	if _, err := f.svc.History(context.Background(), owner, "bad"); err == nil {
		t.Fatalf("expected validation error for malformed id")
	}

	_, err := f.svc.History(context.Background(), owner, uuid.New().String())
	var nfErr *NotFoundError
	if !errors.As(err, &nfErr) {
		t.Fatalf("expected not found, got %v", err)
	}

	for _, id := range []uuid.UUID{anonymous, owned} {
		caller := uuid.New()
		_, err := f.svc.History(context.Background(), caller, id.String())
		var fErr *ForbiddenError
		if !errors.As(err, &fErr) {
			t.Fatalf("expected forbidden for %s, got %v", id, err)
		}
	}

	turns, err := f.svc.History(context.Background(), owner, owned.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(turns) != 1 || f.history.lastLimit != 0 {
		t.Fatalf("expected full history, got %d turns (limit %d)", len(turns), f.history.lastLimit)
	}
}

func TestNormalizeLang(t *testing.T) {
	tests := map[string]string{
		"":                 "en",
		" HI ":             "hi",
		"mr":               "mr",
		"fr":               "en",
		"en-US-x-children": "en",
	}
	for in, expected := range tests {
		if got := normalizeLang(in); got != expected {
			t.Errorf("normalizeLang(%q) = %q, expected %q", in, got, expected)
		}
	}
}
