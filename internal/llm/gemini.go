package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// GeminiGenerator calls the Gemini generateContent API once per sample.
type GeminiGenerator struct {
	client   *genai.Client
	model    string
	sampling Sampling
}

func NewGeminiGenerator(client *genai.Client, model string, sampling Sampling) *GeminiGenerator {
	return &GeminiGenerator{client: client, model: model, sampling: sampling}
}

// Model returns the configured model name.
func (g *GeminiGenerator) Model() string { return g.model }

// Generate implements Generator.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string, n int) ([]string, error) {
	temp := g.sampling.Temperature
	topP := g.sampling.TopP
	cfg := &genai.GenerateContentConfig{
		Temperature:     &temp,
		TopP:            &topP,
		MaxOutputTokens: int32(g.sampling.MaxTokens),
	}
	out := make([]string, 0, n)
	for range max(n, 1) {
		resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
		if err != nil {
			return nil, fmt.Errorf("gemini generate: %w", err)
		}
		out = append(out, resp.Text())
	}
	return out, nil
}
