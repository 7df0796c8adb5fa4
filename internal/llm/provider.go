// Package llm provides the model providers that turn a prompt into raw
// JSON text.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/ashureev/codexr/internal/config"
)

// ErrNotConfigured is returned by a provider whose credentials are missing.
var ErrNotConfigured = errors.New("model provider not configured")

var errEmptyResponse = errors.New("model returned an empty response")

// GenerateRequest carries one prompt and its generation settings.
type GenerateRequest struct {
	Prompt          string
	Query           string // raw user query, for providers that do not read the prompt
	MaxOutputTokens int
	Temperature     float32
	JSON            bool // ask for JSON-typed output when the provider supports it
}

// Provider generates text for a prompt.
type Provider interface {
	// Name is the display name used in error answers, e.g. "Gemini".
	Name() string

	// Generate returns the raw model output.
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// New builds the provider selected by cfg.Provider. A provider whose API key
// is missing is still returned; every call to it fails with ErrNotConfigured.
func New(ctx context.Context, cfg config.ModelConfig) (Provider, error) {
	switch cfg.Provider {
	case "gemini", "":
		if cfg.GoogleAPIKey == "" {
			return unconfigured{name: geminiName}, nil
		}
		return NewGemini(ctx, cfg.GoogleAPIKey, cfg.Name)
	case "openrouter":
		if cfg.OpenRouterAPIKey == "" {
			return unconfigured{name: openRouterName}, nil
		}
		return NewOpenRouter(cfg.OpenRouterAPIKey, cfg.Name), nil
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			return unconfigured{name: openAIName}, nil
		}
		return NewOpenAI(cfg.OpenAIAPIKey, cfg.Name), nil
	case "demo":
		return NewDemo(), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}

// Configured reports whether p can reach a model.
func Configured(p Provider) bool {
	_, missing := p.(unconfigured)
	return !missing
}

type unconfigured struct {
	name string
}

func (u unconfigured) Name() string { return u.name }

func (u unconfigured) Generate(context.Context, GenerateRequest) (string, error) {
	return "", fmt.Errorf("%s: %w", u.name, ErrNotConfigured)
}
