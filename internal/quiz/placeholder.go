package quiz

import (
	"strings"

	"github.com/dgallion1/docquiz/internal/contexts"
)

// Placeholder builds a templated item of type t that never fails. The
// answer is the nth word of the context body (wrapping), or "the topic".
func Placeholder(t Type, passage string, n int) Item {
	subject := "the topic"
	if words := strings.Fields(contexts.Body(passage)); len(words) > 0 {
		subject = strings.Trim(words[n%len(words)], `.,;:!?"'()`)
		if subject == "" {
			subject = words[n%len(words)]
		}
	}

	item := Item{Context: passage, Type: t, Answer: subject, Placeholder: true}
	switch t {
	case Cloze:
		item.Question = ClozeFallback(subject)
	case MCQ:
		item.Question = "What does the text mention about " + subject + "?"
		item.Choices = &Choices{
			Options:     []string{subject, "Not specified", "Unknown", "Cannot be determined"},
			AnswerIndex: 0,
			Distractors: []string{"Not specified", "Unknown", "Cannot be determined"},
		}
	default:
		item.Type = Short
		item.Question = "What is " + subject + "?"
	}
	return item
}
