// Package sentence rebuilds sentences from wrapped lines and removes
// near-duplicates.
package sentence

import (
	"fmt"
	"strings"

	"github.com/neurosnap/sentences"
	"github.com/neurosnap/sentences/english"
)

// Tokenizer splits a block of text into sentences, in order.
type Tokenizer interface {
	Split(text string) []string
}

// NewTokenizer returns the Punkt tokenizer for "english" and the
// punctuation rule tokenizer for "rule".
func NewTokenizer(language string) (Tokenizer, error) {
	switch strings.ToLower(strings.TrimSpace(language)) {
	case "", "english", "en":
		return NewPunktTokenizer()
	case "rule":
		return RuleTokenizer{}, nil
	default:
		return nil, fmt.Errorf("unsupported sentence language %q", language)
	}
}

// PunktTokenizer wraps the trained English Punkt model.
type PunktTokenizer struct {
	tok *sentences.DefaultSentenceTokenizer
}

// NewPunktTokenizer loads the bundled English training data.
func NewPunktTokenizer() (*PunktTokenizer, error) {
	tok, err := english.NewSentenceTokenizer(nil)
	if err != nil {
		return nil, fmt.Errorf("load punkt english: %w", err)
	}
	return &PunktTokenizer{tok: tok}, nil
}

// Split implements Tokenizer.
func (p *PunktTokenizer) Split(text string) []string {
	var out []string
	for _, s := range p.tok.Tokenize(text) {
		if t := strings.TrimSpace(s.Text); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// RuleTokenizer breaks after '.', '!' or '?' when followed by a space.
type RuleTokenizer struct{}

// Split implements Tokenizer.
func (RuleTokenizer) Split(text string) []string {
	var out []string
	var current strings.Builder

	for i, r := range text {
		current.WriteRune(r)
		if (r == '.' || r == '!' || r == '?') && i+1 < len(text) && text[i+1] == ' ' {
			if s := strings.TrimSpace(current.String()); s != "" {
				out = append(out, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		out = append(out, s)
	}
	return out
}
