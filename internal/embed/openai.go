package embed

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const openAIMaxTexts = 256

// OpenAIEncoder calls an OpenAI-compatible /embeddings endpoint.
type OpenAIEncoder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEncoder builds an encoder. An empty baseURL uses api.openai.com.
func NewOpenAIEncoder(apiKey, baseURL, model string) *OpenAIEncoder {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = "text-embedding-3-small"
	}
	return &OpenAIEncoder{client: openai.NewClientWithConfig(cfg), model: model}
}

// Embed implements Encoder.
func (e *OpenAIEncoder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return batched(ctx, texts, openAIMaxTexts, func(ctx context.Context, batch []string) ([][]float32, error) {
		res, err := e.client.CreateEmbeddings(ctx, &openai.EmbeddingRequestStrings{
			Input:          batch,
			Model:          openai.EmbeddingModel(e.model),
			EncodingFormat: "float",
		})
		if err != nil {
			return nil, fmt.Errorf("openai embeddings: %w", err)
		}
		vecs := make([][]float32, len(batch))
		for _, d := range res.Data {
			if d.Index < 0 || d.Index >= len(vecs) {
				return nil, fmt.Errorf("openai embeddings: index %d out of range", d.Index)
			}
			vecs[d.Index] = d.Embedding
		}
		return vecs, nil
	})
}
