package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// OpenAIGenerator calls an OpenAI-compatible chat completions endpoint.
// Self-hosted seq2seq servers exposing that API work through baseURL.
type OpenAIGenerator struct {
	client   *openai.Client
	model    string
	sampling Sampling
}

func NewOpenAIGenerator(apiKey, baseURL, model string, sampling Sampling) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGenerator{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		sampling: sampling,
	}
}

// Model returns the configured model name.
func (g *OpenAIGenerator) Model() string { return g.model }

// Generate implements Generator.
func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string, n int) ([]string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		N:           max(n, 1),
		Temperature: g.sampling.Temperature,
		TopP:        g.sampling.TopP,
		MaxTokens:   g.sampling.MaxTokens,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && (apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500) {
			return nil, &RetryableError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		return nil, fmt.Errorf("openai chat completion: %w", err)
	}
	out := make([]string, 0, len(resp.Choices))
	for _, c := range resp.Choices {
		out = append(out, c.Message.Content)
	}
	return out, nil
}
