package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mindcare-backend/internal/config"
	"mindcare-backend/internal/database"
	"mindcare-backend/internal/handlers"
	"mindcare-backend/internal/middleware"
	"mindcare-backend/internal/repository"
	"mindcare-backend/internal/router"
	"mindcare-backend/internal/services"
	"mindcare-backend/internal/websocket"
	"mindcare-backend/internal/worker"
)

func main() {
	log.Println("🚀 Starting MindCare Navigator API...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis Clients ────
	redisClients, err := database.NewRedisClients(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClients.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, cfg.MigrationsDir); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	sessionRepo := repository.NewSessionRepo(pool)
	logRepo := repository.NewLogRepo(pool)

	// ──── Step 5: Initialize Chat Providers ────
	timeout := time.Duration(cfg.ProviderTimeout) * time.Second
	var providers []services.Provider
	var transcriber *services.GeminiService

	if cfg.GeminiAPIKey != "" {
		geminiService, err := services.NewGeminiService(cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiConcurrentReqs, timeout)
		if err != nil {
			log.Fatalf("✗ Gemini client initialization failed: %v", err)
		}
		defer geminiService.Close()
		providers = append(providers, geminiService)
		transcriber = geminiService
		log.Printf("✓ Gemini client initialized (%s)", cfg.GeminiModel)
	}
	if cfg.XAIAPIKey != "" {
		providers = append(providers, services.NewOpenAICompatProvider(services.ProviderGrok, cfg.XAIAPIKey, cfg.XAIBaseURL, cfg.XAIModel, timeout))
		log.Printf("✓ Grok provider configured (%s)", cfg.XAIModel)
	}
	if cfg.GroqAPIKey != "" {
		providers = append(providers, services.NewOpenAICompatProvider(services.ProviderGroq, cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.GroqModel, timeout))
		log.Printf("✓ Groq provider configured (%s)", cfg.GroqModel)
	}
	// Ollama needs no key; the OpenAI client still wants a non-empty one.
	providers = append(providers, services.NewOpenAICompatProvider(services.ProviderOllama, "ollama", cfg.OllamaBaseURL, cfg.OllamaModel, timeout))
	log.Printf("✓ Ollama provider configured (%s at %s)", cfg.OllamaModel, cfg.OllamaBaseURL)

	registry := services.NewProviderRegistry(providers...)
	log.Printf("✓ Default chat provider: %s", registry.Default())

	// ──── Step 6: Start Chat-Log Worker Pool ────
	workerPool := worker.NewPool(redisClients.Queue, logRepo, cfg.LogWorkers)
	workerPool.Start()
	log.Printf("✓ Worker pool started (%d goroutines)", cfg.LogWorkers)

	retention := services.NewRetentionScheduler(sessionRepo, cfg.SessionRetentionDays)
	retention.Start()
	log.Println("✓ Retention scheduler started")

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret, cfg.JWTExpireMinutes)
	authService := services.NewAuthService(userRepo, jwtAuth)
	publisher := services.NewPublisher(redisClients.PubSub)
	chatService := services.NewChatService(sessionRepo, logRepo, workerPool, publisher, registry)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	chatHandler := handlers.NewChatHandler(chatService)
	voiceHandler := handlers.NewVoiceHandler(nil)
	if transcriber != nil {
		voiceHandler = handlers.NewVoiceHandler(transcriber)
	}
	healthHandler := handlers.NewHealthHandler(map[string]handlers.HealthCheck{
		"postgres": pool.Ping,
		"redis":    redisClients.Ping,
	})

	// ──── Step 7: Start WebSocket Hub ────
	wsHub := websocket.NewHub(redisClients.PubSub, jwtAuth)
	log.Println("✓ WebSocket hub started")

	// ──── Step 8: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		chatHandler,
		voiceHandler,
		healthHandler,
		wsHub,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: timeout + 60*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		retention.Stop()
		wsHub.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)

		// Requests are drained, so no more chat logs will be enqueued.
		workerPool.Stop()
	}()

	log.Printf("✓ MindCare Navigator API ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api", cfg.Port)
	log.Printf("  WS:  ws://localhost:%s/api/ws", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
	<-shutdownDone
	log.Println("✓ Shutdown complete")
}
