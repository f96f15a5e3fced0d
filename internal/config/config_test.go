package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetEnvOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal string
		expected   string
	}{
		{"uses env value", "MINDCARE_TEST_VAR_1", "gemini", "ollama", "gemini"},
		{"uses default when empty", "MINDCARE_TEST_VAR_2", "", "ollama", "ollama"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv(tc.key, tc.envValue)
			}

			result := getEnvOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %q, got %q", tc.expected, result)
			}
		})
	}
}

func TestGetEnvAsIntOrDefault(t *testing.T) {
	tests := []struct {
		name       string
		key        string
		envValue   string
		defaultVal int
		expected   int
	}{
		{"parses integer", "MINDCARE_TEST_INT_1", "90", 120, 90},
		{"uses default for empty", "MINDCARE_TEST_INT_2", "", 120, 120},
		{"uses default for non-numeric", "MINDCARE_TEST_INT_3", "two hours", 120, 120},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv(tc.key, tc.envValue)
			}

			result := getEnvAsIntOrDefault(tc.key, tc.defaultVal)
			if result != tc.expected {
				t.Errorf("Expected %d, got %d", tc.expected, result)
			}
		})
	}
}

func TestMustGetEnv_Panics(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected panic for missing required env var")
		}
	}()

	os.Unsetenv("MINDCARE_NONEXISTENT_REQUIRED_VAR")
	mustGetEnv("MINDCARE_NONEXISTENT_REQUIRED_VAR")
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/mindcare")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "")
	t.Setenv("JWT_EXP_MIN", "")
	t.Setenv("OLLAMA_MODEL", "")

	cfg := Load()

	if cfg.Port != "8002" {
		t.Errorf("Expected default port 8002, got %q", cfg.Port)
	}
	if cfg.JWTExpireMinutes != 120 {
		t.Errorf("Expected JWT expiry 120, got %d", cfg.JWTExpireMinutes)
	}
	if cfg.OllamaModel != "llama3.2" {
		t.Errorf("Expected default ollama model llama3.2, got %q", cfg.OllamaModel)
	}
	if cfg.DatabaseURL != "postgres://localhost/mindcare" {
		t.Errorf("Expected database URL from env, got %q", cfg.DatabaseURL)
	}
}

func TestLoadClient_HomeOverride(t *testing.T) {
	home := t.TempDir()
	t.Setenv("MINDCARE_HOME", home)
	t.Setenv("MINDCARE_API_URL", "http://api.test")

	cfg := LoadClient()

	if cfg.APIURL != "http://api.test" {
		t.Errorf("Expected API URL from env, got %q", cfg.APIURL)
	}
	if cfg.PrefsPath() != filepath.Join(home, "prefs.json") {
		t.Errorf("Unexpected prefs path %q", cfg.PrefsPath())
	}
	if cfg.LogPath() != filepath.Join(home, "chat.log") {
		t.Errorf("Unexpected log path %q", cfg.LogPath())
	}
}
