package ai

import (
	"context"
	"strings"
	"time"

	apperrors "go-easyapply-automation/internal/errors"

	"go.uber.org/zap"
)

// Chain tries providers in a fixed priority order. The first provider that
// returns non-empty text wins and the rest are not consulted.
type Chain struct {
	providers []Provider
	logger    *zap.Logger
}

func NewChain(logger *zap.Logger, providers ...Provider) *Chain {
	return &Chain{
		providers: providers,
		logger:    logger.Named("ai"),
	}
}

// ChainOptions describes the configured providers.
type ChainOptions struct {
	Priority []string
	Keys     map[string]string
	Models   map[string]string
	BaseURLs map[string]string
	Timeout  time.Duration
}

// NewChainFromOptions builds the chain in priority order, skipping providers
// without an API key.
func NewChainFromOptions(logger *zap.Logger, opts ChainOptions) *Chain {
	var providers []Provider
	for _, name := range opts.Priority {
		key := opts.Keys[name]
		if key == "" {
			logger.Warn("ai provider not configured, skipping", zap.String("provider", name))
			continue
		}
		baseURL := opts.BaseURLs[name]
		if baseURL == "" {
			baseURL = DefaultBaseURLs[name]
		}
		model := opts.Models[name]
		if model == "" {
			model = DefaultModels[name]
		}
		providers = append(providers, NewChatProvider(name, key, baseURL, model, opts.Timeout))
		logger.Info("ai provider loaded", zap.String("provider", name), zap.String("model", model))
	}
	return NewChain(logger, providers...)
}

func (c *Chain) Len() int {
	return len(c.providers)
}

// Generate returns the winning text and the name of the provider that produced it.
func (c *Chain) Generate(ctx context.Context, prompt string) (string, string, error) {
	var lastErr error
	for _, p := range c.providers {
		text, err := p.Generate(ctx, prompt)
		if err != nil {
			c.logger.Warn("ai provider failed", zap.String("provider", p.Name()), zap.Error(err))
			lastErr = err
			continue
		}
		if strings.TrimSpace(text) == "" {
			c.logger.Warn("ai provider returned empty text", zap.String("provider", p.Name()))
			continue
		}
		return text, p.Name(), nil
	}
	if len(c.providers) == 0 {
		return "", "", apperrors.ProviderUnavailable("no ai provider configured", nil)
	}
	return "", "", apperrors.ProviderUnavailable("all ai providers failed", lastErr)
}
