package quiz

import (
	"context"
	"regexp"
	"strings"

	"github.com/dgallion1/docquiz/internal/embed"
	"github.com/dgallion1/docquiz/internal/llm"
)

var listMarkerRe = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)]|[a-dA-D][.)])\s+`)

// Distractors samples 2k candidates from gen, drops any that contain the
// answer, de-duplicates, and keeps k by MMR against question + answer.
func Distractors(ctx context.Context, gen llm.Generator, enc embed.Encoder, question, answer, passage string, k int) ([]string, error) {
	if k <= 0 {
		k = DefaultDistractors
	}
	raw, err := gen.Generate(ctx, llm.DistractorPrompt(question, answer, passage), 2*k)
	if err != nil {
		return nil, err
	}
	candidates := distractorCandidates(raw, answer)
	if len(candidates) == 0 {
		return nil, ErrNoDistractors
	}
	return MMRSelect(ctx, enc, candidates, question+" "+answer, k, DefaultLambda)
}

// distractorCandidates splits completions that list several options,
// removes candidates containing the answer, and de-duplicates in order.
func distractorCandidates(raw []string, answer string) []string {
	ans := strings.ToLower(strings.TrimSpace(answer))
	seen := make(map[string]bool)
	var out []string
	for _, completion := range raw {
		for _, line := range strings.Split(completion, "\n") {
			for _, part := range splitOptions(line) {
				c := llm.CleanOutput(listMarkerRe.ReplaceAllString(part, ""))
				c = strings.TrimRight(c, ".;,")
				key := strings.ToLower(c)
				if c == "" || !llm.Usable(c) || seen[key] {
					continue
				}
				if ans != "" && strings.Contains(key, ans) {
					continue
				}
				seen[key] = true
				out = append(out, c)
			}
		}
	}
	return out
}

// splitOptions breaks "a; b; c" style completions into options.
func splitOptions(line string) []string {
	if strings.Contains(line, ";") {
		return strings.Split(line, ";")
	}
	return []string{line}
}
