package quiz

import (
	"context"
	"fmt"

	"github.com/dgallion1/docquiz/internal/embed"
)

// MMR defaults.
const (
	DefaultDistractors = 3
	DefaultLambda      = 0.7
)

// MMRSelect picks k candidates balancing similarity to query against
// similarity to the candidates already picked. With k or fewer candidates
// the input is returned unchanged.
func MMRSelect(ctx context.Context, enc embed.Encoder, candidates []string, query string, k int, lambda float64) ([]string, error) {
	if len(candidates) <= k {
		return candidates, nil
	}
	vecs, err := enc.Embed(ctx, append([]string{query}, candidates...))
	if err != nil {
		return nil, fmt.Errorf("embed distractors: %w", err)
	}
	if len(vecs) != len(candidates)+1 {
		return nil, fmt.Errorf("embed distractors: got %d vectors for %d texts", len(vecs), len(candidates)+1)
	}
	q, cands := vecs[0], vecs[1:]

	relevance := make([]float64, len(cands))
	for i, v := range cands {
		relevance[i] = embed.Cosine(q, v)
	}

	var selected []int
	remaining := make([]int, len(cands))
	for i := range remaining {
		remaining[i] = i
	}

	for len(selected) < k {
		best, bestPos := -1, -1
		var bestScore float64
		for pos, i := range remaining {
			score := relevance[i]
			if len(selected) > 0 {
				var maxSim float64
				for j, s := range selected {
					if sim := embed.Cosine(cands[i], cands[s]); j == 0 || sim > maxSim {
						maxSim = sim
					}
				}
				score = lambda*relevance[i] - (1-lambda)*maxSim
			}
			if best == -1 || score > bestScore {
				best, bestPos, bestScore = i, pos, score
			}
		}
		selected = append(selected, best)
		remaining = append(remaining[:bestPos], remaining[bestPos+1:]...)
	}

	out := make([]string, len(selected))
	for i, idx := range selected {
		out[i] = candidates[idx]
	}
	return out, nil
}
