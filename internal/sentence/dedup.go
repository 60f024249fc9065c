package sentence

import (
	"context"
	"fmt"

	"github.com/dgallion1/docquiz/internal/embed"
)

// DefaultThreshold is the cosine similarity above which a later sentence
// counts as a duplicate of an earlier one.
const DefaultThreshold = 0.85

// Dedup drops every sentence whose embedding is more than threshold similar
// to an earlier kept sentence. Order among kept sentences is preserved.
func Dedup(ctx context.Context, sents []string, threshold float64, enc embed.Encoder) ([]string, error) {
	if len(sents) < 2 {
		return sents, nil
	}
	vecs, err := enc.Embed(ctx, sents)
	if err != nil {
		return nil, fmt.Errorf("embed sentences: %w", err)
	}
	if len(vecs) != len(sents) {
		return nil, fmt.Errorf("embed sentences: got %d vectors for %d sentences", len(vecs), len(sents))
	}

	dropped := make([]bool, len(sents))
	for i := range sents {
		if dropped[i] {
			continue
		}
		for j := i + 1; j < len(sents); j++ {
			if !dropped[j] && embed.Cosine(vecs[i], vecs[j]) > threshold {
				dropped[j] = true
			}
		}
	}

	kept := make([]string, 0, len(sents))
	for i, s := range sents {
		if !dropped[i] {
			kept = append(kept, s)
		}
	}
	return kept, nil
}
