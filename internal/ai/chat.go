package ai

import (
	"context"
	"strings"
	"time"

	apperrors "go-easyapply-automation/internal/errors"

	openai "github.com/sashabaranov/go-openai"
)

// Known OpenAI-compatible chat endpoints.
var (
	DefaultBaseURLs = map[string]string{
		"gemini": "https://generativelanguage.googleapis.com/v1beta/openai",
		"groq":   "https://api.groq.com/openai/v1",
		"openai": "https://api.openai.com/v1",
	}
	DefaultModels = map[string]string{
		"gemini": "gemini-2.0-flash",
		"groq":   "llama-3.3-70b-versatile",
		"openai": "gpt-4o-mini",
	}
)

type chatProvider struct {
	name    string
	model   string
	timeout time.Duration
	client  *openai.Client
}

// NewChatProvider creates a provider for any OpenAI-compatible chat completions API.
func NewChatProvider(name, apiKey, baseURL, model string, timeout time.Duration) Provider {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimSuffix(baseURL, "/")
	}
	return &chatProvider{
		name:    name,
		model:   model,
		timeout: timeout,
		client:  openai.NewClientWithConfig(cfg),
	}
}

func (p *chatProvider) Name() string {
	return p.name
}

func (p *chatProvider) Generate(ctx context.Context, prompt string) (string, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.3, // Low temperature for consistency
	})
	if err != nil {
		return "", apperrors.ProviderUnavailable(p.name+" chat completion", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.ProviderUnavailable("no choices returned from "+p.name, nil)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
