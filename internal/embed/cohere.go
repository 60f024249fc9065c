package embed

import (
	"context"
	"fmt"
	"net/http"
	"time"

	cohere "github.com/cohere-ai/cohere-go/v2"
	cohereclient "github.com/cohere-ai/cohere-go/v2/client"
)

// cohereMaxTexts is the per-request text limit of the v2 embed API.
const cohereMaxTexts = 96

// CohereEncoder calls the Cohere v2 embed API.
type CohereEncoder struct {
	client *cohereclient.Client
	model  string
}

// NewCohereEncoder builds an encoder.
func NewCohereEncoder(apiKey, model string) *CohereEncoder {
	if model == "" {
		model = "embed-multilingual-v3.0"
	}
	c := cohereclient.NewClient(
		cohereclient.WithToken(apiKey),
		cohereclient.WithHTTPClient(&http.Client{Timeout: 60 * time.Second}),
	)
	return &CohereEncoder{client: c, model: model}
}

// Embed implements Encoder.
func (e *CohereEncoder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return batched(ctx, texts, cohereMaxTexts, func(ctx context.Context, batch []string) ([][]float32, error) {
		resp, err := e.client.V2.Embed(ctx, &cohere.V2EmbedRequest{
			Texts:          batch,
			Model:          e.model,
			InputType:      cohere.EmbedInputTypeSearchDocument,
			EmbeddingTypes: []cohere.EmbeddingType{cohere.EmbeddingTypeFloat},
		})
		if err != nil {
			return nil, fmt.Errorf("cohere embed: %w", err)
		}
		if resp.Embeddings == nil {
			return nil, fmt.Errorf("cohere embed: no float embeddings in response")
		}
		vecs := make([][]float32, 0, len(resp.Embeddings.Float))
		for _, v64 := range resp.Embeddings.Float {
			v := make([]float32, len(v64))
			for i, f := range v64 {
				v[i] = float32(f)
			}
			vecs = append(vecs, v)
		}
		return vecs, nil
	})
}
