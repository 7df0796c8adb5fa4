package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	openAIName     = "OpenAI"
	openRouterName = "OpenRouter"

	openRouterBaseURL      = "https://openrouter.ai/api/v1"
	defaultOpenAIModel     = "gpt-4o-mini"
	defaultOpenRouterModel = "google/gemini-2.0-flash-001"
)

// OpenAI calls any OpenAI-compatible chat completion API.
type OpenAI struct {
	client *openai.Client
	model  string
	name   string
}

// NewOpenAI creates a provider for the OpenAI API.
func NewOpenAI(apiKey, model string) *OpenAI {
	if model == "" {
		model = defaultOpenAIModel
	}
	return newOpenAICompatible(openAIName, apiKey, "", model)
}

// NewOpenRouter creates a provider for OpenRouter.
func NewOpenRouter(apiKey, model string) *OpenAI {
	if model == "" {
		model = defaultOpenRouterModel
	}
	return newOpenAICompatible(openRouterName, apiKey, openRouterBaseURL, model)
}

func newOpenAICompatible(name, apiKey, baseURL, model string) *OpenAI {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return &OpenAI{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		name:   name,
	}
}

// Name implements Provider.
func (p *OpenAI) Name() string { return p.name }

// Generate implements Provider.
func (p *OpenAI) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	request := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxOutputTokens,
		Temperature: req.Temperature,
	}
	if req.JSON {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errEmptyResponse
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
