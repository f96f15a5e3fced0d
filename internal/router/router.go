package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"mindcare-backend/internal/handlers"
	"mindcare-backend/internal/middleware"
	"mindcare-backend/internal/websocket"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	chatHandler *handlers.ChatHandler,
	voiceHandler *handlers.VoiceHandler,
	healthHandler *handlers.HealthHandler,
	wsHub *websocket.Hub,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)
	// Chat rate limiter (30 req/min per IP); each message may hit a paid provider
	chatLimiter := middleware.NewRateLimiter(30, time.Minute)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.Health)

		// ──── Auth Routes (public) ────
		r.Group(func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// ──── Chat Routes (anonymous allowed) ────
		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Optional)
			r.Use(chatLimiter.Middleware)
			r.Post("/chat", chatHandler.Chat)
			r.Post("/new_chat", chatHandler.NewChat)
			r.Post("/transcribe", voiceHandler.Transcribe)
		})

		// ──── Session Routes ────
		r.Group(func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/sessions", chatHandler.Sessions)
			r.Get("/history/{session_id}", chatHandler.History)
		})

		// ──── WebSocket ────
		r.Get("/ws", wsHub.HandleWebSocket)
	})

	return r
}
