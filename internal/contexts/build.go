// Package contexts packs sentences into word-budgeted reading contexts and
// filters out the ones that are not worth quizzing on.
package contexts

import "strings"

// Defaults for Pack.
const (
	DefaultMaxWords     = 200
	DefaultMinSentences = 2
)

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// DefaultStep is the window step for a window of size w: half the window,
// at least one sentence.
func DefaultStep(w int) int {
	return max(1, w/2)
}

// Windows slides a window of size sentences over sents, advancing by step.
// Each window is its sentences joined by spaces. The last window may be
// shorter than size.
func Windows(sents []string, size, step int) []string {
	if len(sents) == 0 || size <= 0 {
		return nil
	}
	if step <= 0 {
		step = DefaultStep(size)
	}
	var out []string
	for i := 0; i < len(sents); i += step {
		end := min(i+size, len(sents))
		out = append(out, strings.Join(sents[i:end], " "))
		if end == len(sents) {
			break
		}
	}
	return out
}

// Pack accumulates sentences into contexts of at most maxWords words.
// A context closes when the next sentence would overflow the budget and is
// only emitted if it holds at least minSentences sentences. When nothing
// was emitted but input exists, all sentences become one context.
func Pack(sents []string, maxWords, minSentences int) []string {
	if maxWords <= 0 {
		maxWords = DefaultMaxWords
	}
	if minSentences <= 0 {
		minSentences = DefaultMinSentences
	}

	var (
		out     []string
		current []string
		words   int
	)
	for _, s := range sents {
		n := WordCount(s)
		if words+n > maxWords {
			if len(current) >= minSentences {
				out = append(out, strings.Join(current, " "))
			}
			current = []string{s}
			words = n
			continue
		}
		current = append(current, s)
		words += n
	}
	if len(current) >= minSentences {
		out = append(out, strings.Join(current, " "))
	}

	if len(out) == 0 && len(sents) > 0 {
		out = append(out, strings.Join(sents, " "))
	}
	return out
}

// WithTitle prefixes body with a title line. An empty title returns body.
func WithTitle(title, body string) string {
	if title == "" {
		return body
	}
	return title + "\n" + body
}
