package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	geminiName         = "Gemini"
	defaultGeminiModel = "gemini-2.0-flash"
)

// Gemini calls Google's Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini provider.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("%s: %w", geminiName, ErrNotConfigured)
	}
	if model == "" {
		model = defaultGeminiModel
	}

	return newGeminiWithConfig(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}, model)
}

func newGeminiWithConfig(ctx context.Context, clientConfig *genai.ClientConfig, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

// Name implements Provider.
func (g *Gemini) Name() string { return geminiName }

// Generate implements Provider.
func (g *Gemini) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(req.Temperature),
		MaxOutputTokens: int32(req.MaxOutputTokens),
	}
	if req.JSON {
		cfg.ResponseMIMEType = "application/json"
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", fmt.Errorf("%w: prompt blocked (%s)", errEmptyResponse, resp.PromptFeedback.BlockReason)
		}
		return "", errEmptyResponse
	}

	// Blank text is handed on so the caller reports it as unparseable.
	return strings.TrimSpace(resp.Text()), nil
}
