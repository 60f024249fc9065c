package quiz

import (
	"regexp"
	"strings"

	"github.com/dgallion1/docquiz/internal/sentence"
)

// Blank replaces the answer in a cloze question.
const Blank = "____"

// ClozeFallback is the templated cloze used when no sentence can be blanked.
func ClozeFallback(answer string) string {
	return "In the context above, " + Blank + " refers to " + answer + "."
}

// MakeCloze blanks the first occurrence of answer in the first sentence of
// text that mentions it and does not mention "introduction". Answers longer
// than three words or containing '@' are refused.
func MakeCloze(text, answer string, tok sentence.Tokenizer) (string, error) {
	answer = strings.TrimSpace(answer)
	if answer == "" || len(strings.Fields(answer)) > 3 || strings.Contains(answer, "@") {
		return "", ErrBadAnswer
	}
	re, err := regexp.Compile(`(?i)` + regexp.QuoteMeta(answer))
	if err != nil {
		return "", ErrBadAnswer
	}

	for _, sent := range tok.Split(text) {
		if strings.Contains(strings.ToLower(sent), "introduction") {
			continue
		}
		loc := re.FindStringIndex(sent)
		if loc == nil {
			continue
		}
		return sent[:loc[0]] + Blank + sent[loc[1]:], nil
	}
	return "", ErrNoCloze
}
