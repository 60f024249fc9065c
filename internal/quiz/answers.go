package quiz

import (
	"fmt"
	"strings"

	"github.com/dgallion1/docquiz/internal/contexts"
	"github.com/dgallion1/docquiz/internal/nlp"
)

// DefaultMaxAnswers caps answer candidates per context.
const DefaultMaxAnswers = 5

var answerLabels = map[string]bool{
	nlp.LabelPerson:   true,
	nlp.LabelGPE:      true,
	nlp.LabelOrg:      true,
	nlp.LabelDate:     true,
	nlp.LabelCardinal: true,
	nlp.LabelEvent:    true,
}

// ExtractAnswers returns up to max candidate answers of one to three words:
// named entities of the answerable categories first, then noun phrases.
// Candidates are unique case-insensitively.
func ExtractAnswers(tagger nlp.Tagger, text string, max int) ([]string, error) {
	if max <= 0 {
		max = DefaultMaxAnswers
	}
	a, err := tagger.Analyze(text)
	if err != nil {
		return nil, fmt.Errorf("tag context: %w", err)
	}

	var candidates []string
	for _, ent := range a.Entities {
		if answerLabels[ent.Label] && shortSpan(ent.Text) {
			candidates = append(candidates, ent.Text)
		}
	}
	if len(candidates) < max {
		for _, np := range a.NounPhrases {
			if shortSpan(np) {
				candidates = append(candidates, np)
			}
		}
	}

	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, max)
	for _, c := range candidates {
		c = strings.TrimSpace(c)
		key := strings.ToLower(c)
		if c == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, c)
		if len(out) == max {
			break
		}
	}
	return out, nil
}

func shortSpan(s string) bool {
	n := len(strings.Fields(s))
	return n >= 1 && n <= 3
}

var badAnswerKeywords = []string{
	"introduction", "author", "student",
	"supervisor", "email", "university",
}

// IsBadAnswer flags answers that are emails or front-matter words.
func IsBadAnswer(answer string) bool {
	a := strings.ToLower(answer)
	if contexts.EmailRe.MatchString(a) {
		return true
	}
	for _, k := range badAnswerKeywords {
		if strings.Contains(a, k) {
			return true
		}
	}
	return false
}
