package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Database
	DatabaseURL   string
	MigrationsDir string

	// Redis
	RedisURL string

	// JWT
	JWTSecret        string
	JWTExpireMinutes int

	// Gemini AI
	GeminiAPIKey         string
	GeminiModel          string
	GeminiConcurrentReqs int

	// OpenAI-compatible providers
	XAIAPIKey       string
	XAIModel        string
	XAIBaseURL      string
	GroqAPIKey      string
	GroqModel       string
	GroqBaseURL     string
	OllamaBaseURL   string
	OllamaModel     string
	ProviderTimeout int

	// Background work
	LogWorkers           int
	SessionRetentionDays int

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:                 getEnvOrDefault("PORT", "8002"),
		Env:                  getEnvOrDefault("ENV", "development"),
		DatabaseURL:          mustGetEnv("DATABASE_URL"),
		MigrationsDir:        getEnvOrDefault("MIGRATIONS_DIR", "migrations"),
		RedisURL:             mustGetEnv("REDIS_URL"),
		JWTSecret:            mustGetEnv("JWT_SECRET"),
		JWTExpireMinutes:     getEnvAsIntOrDefault("JWT_EXP_MIN", 120),
		GeminiAPIKey:         getEnvOrDefault("GEMINI_API_KEY", ""),
		GeminiModel:          getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		GeminiConcurrentReqs: getEnvAsIntOrDefault("GEMINI_CONCURRENT_REQUESTS", 5),
		XAIAPIKey:            getEnvOrDefault("XAI_API_KEY", ""),
		XAIModel:             getEnvOrDefault("XAI_MODEL", "grok-2"),
		XAIBaseURL:           getEnvOrDefault("XAI_BASE_URL", "https://api.x.ai/v1"),
		GroqAPIKey:           getEnvOrDefault("GROQ_API_KEY", ""),
		GroqModel:            getEnvOrDefault("GROQ_MODEL", "llama-3.1-8b-instant"),
		GroqBaseURL:          getEnvOrDefault("GROQ_BASE_URL", "https://api.groq.com/openai/v1"),
		OllamaBaseURL:        getEnvOrDefault("OLLAMA_BASE_URL", "http://127.0.0.1:11434/v1"),
		OllamaModel:          getEnvOrDefault("OLLAMA_MODEL", "llama3.2"),
		ProviderTimeout:      getEnvAsIntOrDefault("PROVIDER_TIMEOUT_SECONDS", 30),
		LogWorkers:           getEnvAsIntOrDefault("LOG_WORKERS", 2),
		SessionRetentionDays: getEnvAsIntOrDefault("SESSION_RETENTION_DAYS", 30),
		FrontendURL:          getEnvOrDefault("FRONTEND_URL", "*"),
	}

	return cfg
}

// ClientConfig drives the terminal chat client.
type ClientConfig struct {
	APIURL    string
	HomeDir   string
	RecordCmd string
	TTSCmd    string
}

// PrefsPath is where the client keeps its local preferences.
func (c *ClientConfig) PrefsPath() string {
	return filepath.Join(c.HomeDir, "prefs.json")
}

// LogPath is where the client writes its log while the TUI owns the terminal.
func (c *ClientConfig) LogPath() string {
	return filepath.Join(c.HomeDir, "chat.log")
}

func LoadClient() *ClientConfig {
	godotenv.Load()

	home, _ := os.UserHomeDir()

	return &ClientConfig{
		APIURL:    getEnvOrDefault("MINDCARE_API_URL", "http://localhost:8002"),
		HomeDir:   getEnvOrDefault("MINDCARE_HOME", filepath.Join(home, ".config", "mindcare")),
		RecordCmd: getEnvOrDefault("MINDCARE_RECORD_CMD", "arecord -q -f S16_LE -r 16000 -c 1 -d 6 -t wav"),
		TTSCmd:    getEnvOrDefault("MINDCARE_TTS_CMD", "espeak-ng -v {lang} {text}"),
	}
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic(fmt.Sprintf("required environment variable %s is not set", key))
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}
