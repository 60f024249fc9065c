// Package quiz turns reading contexts into a balanced set of short-answer,
// cloze and multiple-choice questions.
package quiz

import "errors"

// Type is the question format.
type Type string

const (
	Short Type = "short"
	Cloze Type = "cloze"
	MCQ   Type = "mcq"
)

// Types lists every question format in the order coverage is checked.
var Types = []Type{Short, Cloze, MCQ}

// Outcomes that mean "no item" for one (context, answer, type) attempt.
var (
	ErrNoCloze       = errors.New("no sentence to blank out")
	ErrEmptyQuestion = errors.New("model returned no usable question")
	ErrNoDistractors = errors.New("no usable distractors")
	ErrBadAnswer     = errors.New("answer rejected")
	ErrNoContexts    = errors.New("no usable contexts")
)

// Choices is the multiple-choice payload.
type Choices struct {
	Options     []string `json:"choices"`
	AnswerIndex int      `json:"answer_index"`
	Distractors []string `json:"distractors"`
}

// Item is one quiz question. Choices is set only for MCQ items.
type Item struct {
	Context     string `json:"context"`
	Type        Type   `json:"type"`
	Question    string `json:"question"`
	Answer      string `json:"answer"`
	Placeholder bool   `json:"placeholder,omitempty"`
	*Choices
}

// Key identifies an item for deduplication.
type Key struct {
	Type     Type
	Question string
}

// Key returns the (type, question) identity of the item.
func (it Item) Key() Key {
	return Key{Type: it.Type, Question: it.Question}
}
