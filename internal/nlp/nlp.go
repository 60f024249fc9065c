// Package nlp finds named entities and noun phrases in a context.
package nlp

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/jdkato/prose/v2"
)

// Entity categories usable as quiz answers.
const (
	LabelPerson   = "PERSON"
	LabelGPE      = "GPE"
	LabelOrg      = "ORG"
	LabelDate     = "DATE"
	LabelCardinal = "CARDINAL"
	LabelEvent    = "EVENT"
)

// Span is a tagged stretch of text.
type Span struct {
	Text  string
	Label string
}

// Analysis is the tagger output for one text.
type Analysis struct {
	Entities    []Span   // In order of appearance per source.
	NounPhrases []string // In order of appearance.
}

// Tagger extracts entities and noun phrases.
type Tagger interface {
	Analyze(text string) (Analysis, error)
}

// ProseTagger uses prose's averaged-perceptron POS tagger and NER model.
type ProseTagger struct{}

var (
	yearRe  = regexp.MustCompile(`^(1[0-9]{3}|20[0-9]{2})$`)
	monthRe = regexp.MustCompile(`^(?i)(january|february|march|april|may|june|july|august|september|october|november|december)$`)
)

// Analyze implements Tagger.
func (ProseTagger) Analyze(text string) (Analysis, error) {
	doc, err := prose.NewDocument(text)
	if err != nil {
		return Analysis{}, fmt.Errorf("prose document: %w", err)
	}

	var a Analysis
	for _, ent := range doc.Entities() {
		a.Entities = append(a.Entities, Span{Text: ent.Text, Label: ent.Label})
	}

	tokens := doc.Tokens()
	for i, tok := range tokens {
		if tok.Tag != "CD" {
			continue
		}
		switch {
		case yearRe.MatchString(tok.Text):
			label := LabelDate
			text := tok.Text
			if i > 0 && monthRe.MatchString(tokens[i-1].Text) {
				text = tokens[i-1].Text + " " + tok.Text
			}
			a.Entities = append(a.Entities, Span{Text: text, Label: label})
		default:
			a.Entities = append(a.Entities, Span{Text: tok.Text, Label: LabelCardinal})
		}
	}

	a.NounPhrases = nounPhrases(tokens)
	return a, nil
}

// nounPhrases groups determiner/adjective/noun runs that end in a noun.
func nounPhrases(tokens []prose.Token) []string {
	var (
		out []string
		run []prose.Token
	)
	flush := func() {
		// Trim trailing modifiers so the phrase ends in a noun.
		for len(run) > 0 && !isNoun(run[len(run)-1].Tag) {
			run = run[:len(run)-1]
		}
		if len(run) > 0 {
			words := make([]string, len(run))
			for i, t := range run {
				words[i] = t.Text
			}
			out = append(out, strings.Join(words, " "))
		}
		run = run[:0]
	}

	for _, tok := range tokens {
		switch {
		case isDeterminer(tok.Tag):
			flush()
			run = append(run, tok)
		case isModifier(tok.Tag) || isNoun(tok.Tag):
			run = append(run, tok)
		default:
			flush()
		}
	}
	flush()
	return out
}

func isNoun(tag string) bool {
	switch tag {
	case "NN", "NNS", "NNP", "NNPS":
		return true
	}
	return false
}

func isDeterminer(tag string) bool {
	return tag == "DT" || tag == "PRP$"
}

func isModifier(tag string) bool {
	switch tag {
	case "JJ", "JJR", "JJS", "CD":
		return true
	}
	return false
}
