package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"mindcare-backend/internal/models"
)

// OpenAICompatProvider talks to any chat-completions endpoint that follows
// the OpenAI wire format: x.ai (grok), Groq and Ollama's /v1 API.
type OpenAICompatProvider struct {
	name    string
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewOpenAICompatProvider(name, apiKey, baseURL, model string, timeout time.Duration) *OpenAICompatProvider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}

	return &OpenAICompatProvider{
		name:    name,
		client:  openai.NewClientWithConfig(cfg),
		model:   model,
		timeout: timeout,
	}
}

func (p *OpenAICompatProvider) Name() string { return p.name }

func (p *OpenAICompatProvider) Reply(ctx context.Context, prompt Prompt) (string, error) {
	ctx, cancel := withProviderTimeout(ctx, p.timeout)
	defer cancel()

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Messages:    completionMessages(prompt),
		Temperature: 0.4,
	})
	if err != nil {
		return "", fmt.Errorf("%s chat completion failed: %w", p.name, err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", p.name)
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func completionMessages(prompt Prompt) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(prompt.History)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: prompt.System,
	})

	for _, m := range prompt.History {
		role := openai.ChatMessageRoleUser
		if m.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: m.Content})
	}

	return append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt.Message,
	})
}
