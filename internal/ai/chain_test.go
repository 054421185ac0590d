package ai

import (
	"context"
	"errors"
	"testing"

	apperrors "go-easyapply-automation/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeProvider struct {
	name  string
	text  string
	err   error
	calls int
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	return f.text, f.err
}

func TestChain_Generate(t *testing.T) {
	tests := []struct {
		name         string
		providers    []*fakeProvider
		wantText     string
		wantProvider string
		wantErr      bool
		wantCalls    []int
	}{
		{
			name: "Primary wins, secondary not consulted",
			providers: []*fakeProvider{
				{name: "gemini", text: "1800000"},
				{name: "groq", text: "other"},
			},
			wantText:     "1800000",
			wantProvider: "gemini",
			wantCalls:    []int{1, 0},
		},
		{
			name: "Primary fails, secondary answers",
			providers: []*fakeProvider{
				{name: "gemini", err: errors.New("quota exceeded")},
				{name: "groq", text: "Yes"},
			},
			wantText:     "Yes",
			wantProvider: "groq",
			wantCalls:    []int{1, 1},
		},
		{
			name: "Empty text falls through",
			providers: []*fakeProvider{
				{name: "gemini", text: "   "},
				{name: "groq", text: "Hyderabad"},
			},
			wantText:     "Hyderabad",
			wantProvider: "groq",
			wantCalls:    []int{1, 1},
		},
		{
			name: "All fail",
			providers: []*fakeProvider{
				{name: "gemini", err: errors.New("down")},
				{name: "groq", text: ""},
			},
			wantErr:   true,
			wantCalls: []int{1, 1},
		},
		{
			name:    "Nothing configured",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var providers []Provider
			for _, p := range tt.providers {
				providers = append(providers, p)
			}
			chain := NewChain(zap.NewNop(), providers...)

			text, provider, err := chain.Generate(context.Background(), "prompt")
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsProviderUnavailable(err))
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantText, text)
				assert.Equal(t, tt.wantProvider, provider)
			}
			for i, p := range tt.providers {
				assert.Equal(t, tt.wantCalls[i], p.calls, "calls to %s", p.name)
			}
		})
	}
}

func TestNewChainFromOptions_SkipsUnconfigured(t *testing.T) {
	chain := NewChainFromOptions(zap.NewNop(), ChainOptions{
		Priority: []string{"gemini", "groq", "openai"},
		Keys:     map[string]string{"groq": "key"},
	})
	require.Equal(t, 1, chain.Len())
	assert.Equal(t, "groq", chain.providers[0].Name())
}

func TestCleanMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "  John Doe\nGo developer ", expected: "John Doe\nGo developer"},
		{name: "fenced with language", input: "```text\nJohn Doe\n```", expected: "John Doe"},
		{name: "fenced without language", input: "```\nJohn Doe\n```", expected: "John Doe"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanMarkdown(tt.input))
		})
	}
}
