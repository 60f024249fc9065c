package quiz

import (
	"context"
	"errors"
	"math/rand/v2"
	"regexp"
	"strings"
	"unicode"

	"github.com/dgallion1/docquiz/internal/embed"
	"github.com/dgallion1/docquiz/internal/llm"
	"github.com/dgallion1/docquiz/internal/models"
	"github.com/dgallion1/docquiz/internal/nlp"
	"github.com/dgallion1/docquiz/internal/sentence"
)

var promptAnswerRe = regexp.MustCompile(`answer is "([^"]*)"`)

// echoGenerator writes "What is <answer>" for question prompts.
type echoGenerator struct{}

func (echoGenerator) Generate(_ context.Context, prompt string, n int) ([]string, error) {
	m := promptAnswerRe.FindStringSubmatch(prompt)
	if m == nil {
		return nil, errors.New("unexpected prompt")
	}
	out := make([]string, n)
	for i := range out {
		out[i] = "  Question: What is " + m[1] + "  "
	}
	return out, nil
}
func (echoGenerator) Model() string { return "echo" }

// listGenerator returns fixed completions.
type listGenerator struct{ out []string }

func (g listGenerator) Generate(context.Context, string, int) ([]string, error) { return g.out, nil }
func (g listGenerator) Model() string                                          { return "list" }

type errGenerator struct{ err error }

func (g errGenerator) Generate(context.Context, string, int) ([]string, error) { return nil, g.err }
func (g errGenerator) Model() string                                          { return "err" }

// letterEncoder embeds text as letter frequencies.
type letterEncoder struct{}

func (letterEncoder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v := make([]float32, 26)
		for _, r := range strings.ToLower(t) {
			if r >= 'a' && r <= 'z' {
				v[r-'a']++
			}
		}
		out[i] = v
	}
	return out, nil
}

// capsTagger treats capitalized words as PERSON entities and other words
// longer than six letters as noun phrases.
type capsTagger struct{}

func (capsTagger) Analyze(text string) (nlp.Analysis, error) {
	var a nlp.Analysis
	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, ".,;:!?")
		if w == "" {
			continue
		}
		if unicode.IsUpper([]rune(w)[0]) {
			a.Entities = append(a.Entities, nlp.Span{Text: w, Label: nlp.LabelPerson})
		} else if len(w) > 6 {
			a.NounPhrases = append(a.NounPhrases, w)
		}
	}
	return a, nil
}

type fakeModels struct {
	question   llm.Generator
	distractor llm.Generator
	encoder    embed.Encoder
	tagger     nlp.Tagger
	loadErr    error
}

func newFakeModels() *fakeModels {
	return &fakeModels{
		question:   echoGenerator{},
		distractor: listGenerator{out: []string{"Pasteur", "Newton", "Curie\nEinstein", "Faraday", "Bohr"}},
		encoder:    letterEncoder{},
		tagger:     capsTagger{},
	}
}

func (f *fakeModels) QuestionGenerator(context.Context) (llm.Generator, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.question, nil
}
func (f *fakeModels) DistractorGenerator(context.Context) (llm.Generator, error) {
	return f.distractor, nil
}
func (f *fakeModels) Encoder(context.Context) (embed.Encoder, error) { return f.encoder, nil }
func (f *fakeModels) Tokenizer() (sentence.Tokenizer, error)        { return sentence.RuleTokenizer{}, nil }
func (f *fakeModels) Tagger() (nlp.Tagger, error)                   { return f.tagger, nil }

// countingGenerator counts Generate calls on the wrapped generator.
type countingGenerator struct {
	llm.Generator
	calls int
}

func (g *countingGenerator) Generate(ctx context.Context, prompt string, n int) ([]string, error) {
	g.calls++
	return g.Generator.Generate(ctx, prompt, n)
}

// fakeSource builds items without models.
type fakeSource struct {
	answers []string
	err     error
	typeErr map[Type]error
	noMCQ   bool
	builds  int
	built   map[Type]int
}

func (s *fakeSource) Supports(_ context.Context, t Type) (bool, error) {
	return t != MCQ || !s.noMCQ, nil
}

func (s *fakeSource) Answers(context.Context, string, int) ([]string, error) {
	return s.answers, nil
}

func (s *fakeSource) Build(_ context.Context, passage, answer string, t Type) (Item, error) {
	s.builds++
	if s.built == nil {
		s.built = make(map[Type]int)
	}
	s.built[t]++
	if err := s.typeErr[t]; err != nil {
		return Item{}, err
	}
	if s.err != nil {
		return Item{}, s.err
	}
	return Item{Context: passage, Type: t, Question: string(t) + " about " + answer + "?", Answer: answer}, nil
}

func seeded() *rand.Rand { return rand.New(rand.NewPCG(1, 2)) }

var errLoad = &models.LoadError{Model: "question", Err: errors.New("out of memory")}

const passage = "Biology\nIn 1859 Darwin published his theory of evolution. " +
	"Mendel studied inheritance in peas growing in Brno. " +
	"Watson and Crick described the double helix structure of molecules. " +
	"Scientists continue investigating genetics across many organisms today."
