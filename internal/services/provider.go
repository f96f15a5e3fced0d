package services

import (
	"context"
	"strings"
	"time"

	"mindcare-backend/internal/models"
)

const SafeSystemPrompt = "You are MindCare Navigator, a supportive, non-diagnostic assistant. " +
	"Provide empathetic, grounded guidance for emotional support, stress relief, and resource navigation. " +
	"Do not provide medical diagnoses or therapy. Encourage professional help when needed and share " +
	"region-agnostic, general resources. Keep responses short, kind, and actionable."

// Provider names accepted by POST /api/chat, in default-selection order.
const (
	ProviderGemini = "gemini"
	ProviderGrok   = "grok"
	ProviderGroq   = "groq"
	ProviderOllama = "ollama"
)

var providerOrder = []string{ProviderGemini, ProviderGrok, ProviderGroq, ProviderOllama}

// Prompt is everything a provider needs to produce one reply.
type Prompt struct {
	System  string
	History []models.ChatMessage
	Message string
	Lang    string
}

type Provider interface {
	Name() string
	Reply(ctx context.Context, prompt Prompt) (string, error)
}

// ProviderRegistry holds the providers that are configured on this server.
type ProviderRegistry struct {
	providers map[string]Provider
}

func NewProviderRegistry(providers ...Provider) *ProviderRegistry {
	r := &ProviderRegistry{providers: make(map[string]Provider)}
	for _, p := range providers {
		if p != nil {
			r.providers[p.Name()] = p
		}
	}
	return r
}

// Default is the first configured provider in gemini, grok, groq, ollama
// order. With nothing configured it is ollama.
func (r *ProviderRegistry) Default() string {
	for _, name := range providerOrder {
		if _, ok := r.providers[name]; ok {
			return name
		}
	}
	return ProviderOllama
}

// Resolve maps a requested provider name to a registered provider. A known
// name that is not configured resolves to a nil provider so the caller can
// fall back to the keyword reply.
func (r *ProviderRegistry) Resolve(name string) (string, Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = r.Default()
	}

	if !isKnownProvider(name) {
		return "", nil, &ValidationError{Fields: map[string]string{"provider": "Unknown provider: " + name}}
	}

	return name, r.providers[name], nil
}

func isKnownProvider(name string) bool {
	for _, known := range providerOrder {
		if known == name {
			return true
		}
	}
	return false
}

// buildSystemPrompt appends a reply-language directive for Hindi and Marathi.
func buildSystemPrompt(lang string) string {
	switch lang {
	case "hi":
		return SafeSystemPrompt + " Always reply in Hindi."
	case "mr":
		return SafeSystemPrompt + " Always reply in Marathi."
	default:
		return SafeSystemPrompt
	}
}

// withProviderTimeout bounds one provider call. A zero timeout leaves ctx as is.
func withProviderTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
