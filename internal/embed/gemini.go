package embed

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const geminiMaxTexts = 100

// GeminiEncoder calls the Gemini embedContent API.
type GeminiEncoder struct {
	client *genai.Client
	model  string
}

// NewGeminiEncoder builds an encoder from an existing client so the registry
// can share one client between generation and embedding.
func NewGeminiEncoder(client *genai.Client, model string) *GeminiEncoder {
	if model == "" {
		model = "text-embedding-004"
	}
	return &GeminiEncoder{client: client, model: model}
}

// Embed implements Encoder.
func (e *GeminiEncoder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return batched(ctx, texts, geminiMaxTexts, func(ctx context.Context, batch []string) ([][]float32, error) {
		contents := make([]*genai.Content, 0, len(batch))
		for _, t := range batch {
			contents = append(contents, genai.NewContentFromText(t, genai.RoleUser))
		}
		res, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
			TaskType: "SEMANTIC_SIMILARITY",
		})
		if err != nil {
			return nil, fmt.Errorf("gemini embed: %w", err)
		}
		vecs := make([][]float32, 0, len(res.Embeddings))
		for _, emb := range res.Embeddings {
			vecs = append(vecs, emb.Values)
		}
		return vecs, nil
	})
}
