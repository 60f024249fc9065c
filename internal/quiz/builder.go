package quiz

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"

	"github.com/dgallion1/docquiz/internal/contexts"
	"github.com/dgallion1/docquiz/internal/embed"
	"github.com/dgallion1/docquiz/internal/llm"
	"github.com/dgallion1/docquiz/internal/nlp"
	"github.com/dgallion1/docquiz/internal/sentence"
)

// Models supplies lazily loaded model clients. *models.Registry
// implements it.
type Models interface {
	QuestionGenerator(ctx context.Context) (llm.Generator, error)
	DistractorGenerator(ctx context.Context) (llm.Generator, error)
	Encoder(ctx context.Context) (embed.Encoder, error)
	Tokenizer() (sentence.Tokenizer, error)
	Tagger() (nlp.Tagger, error)
}

// Builder produces one question for a (context, answer, type) triple.
// It is not safe for concurrent use because it shares rng.
type Builder struct {
	models Models
	rng    *rand.Rand
}

func NewBuilder(m Models, rng *rand.Rand) *Builder {
	return &Builder{models: m, rng: rng}
}

// Answers extracts answer candidates from the body of passage.
func (b *Builder) Answers(_ context.Context, passage string, max int) ([]string, error) {
	tagger, err := b.models.Tagger()
	if err != nil {
		return nil, err
	}
	return ExtractAnswers(tagger, contexts.Body(passage), max)
}

// Build writes one question of type t. Any error means no item was
// produced; callers move on to the next candidate unless the error is a
// model load failure.
func (b *Builder) Build(ctx context.Context, passage, answer string, t Type) (Item, error) {
	if IsBadAnswer(answer) {
		return Item{}, ErrBadAnswer
	}
	item := Item{Context: passage, Type: t, Answer: answer}

	switch t {
	case Cloze:
		tok, err := b.models.Tokenizer()
		if err != nil {
			return Item{}, err
		}
		q, err := MakeCloze(contexts.Body(passage), answer, tok)
		if err != nil {
			return Item{}, err
		}
		item.Question = q
		return item, nil

	case Short:
		q, err := b.question(ctx, passage, answer)
		if err != nil {
			return Item{}, err
		}
		item.Question = q
		return item, nil

	case MCQ:
		dgen, err := b.distractorGenerator(ctx)
		if err != nil {
			return Item{}, err
		}
		q, err := b.question(ctx, passage, answer)
		if err != nil {
			return Item{}, err
		}
		choices, err := b.choices(ctx, dgen, q, answer, passage)
		if err != nil {
			return Item{}, err
		}
		item.Question = q
		item.Choices = choices
		return item, nil
	}
	return Item{}, ErrBadAnswer
}

// question asks the question model for a stem and tidies it.
func (b *Builder) question(ctx context.Context, passage, answer string) (string, error) {
	gen, err := b.models.QuestionGenerator(ctx)
	if err != nil {
		return "", err
	}
	out, err := gen.Generate(ctx, llm.QuestionPrompt(passage, answer), 1)
	if err != nil {
		return "", err
	}
	for _, raw := range out {
		q := llm.CleanOutput(raw)
		if !llm.Usable(q) {
			continue
		}
		if !strings.HasSuffix(q, "?") {
			q += "?"
		}
		return q, nil
	}
	return "", ErrEmptyQuestion
}

// Supports reports whether items of type t can be built at all. MCQ
// needs a distractor model.
func (b *Builder) Supports(ctx context.Context, t Type) (bool, error) {
	if t != MCQ {
		return true, nil
	}
	_, err := b.distractorGenerator(ctx)
	if errors.Is(err, ErrNoDistractors) {
		return false, nil
	}
	return err == nil, err
}

// distractorGenerator returns ErrNoDistractors when distractors are disabled.
func (b *Builder) distractorGenerator(ctx context.Context) (llm.Generator, error) {
	gen, err := b.models.DistractorGenerator(ctx)
	if err != nil {
		return nil, err
	}
	if gen == nil {
		return nil, ErrNoDistractors
	}
	return gen, nil
}

// choices gathers distractors from gen and shuffles them with the answer.
func (b *Builder) choices(ctx context.Context, gen llm.Generator, question, answer, passage string) (*Choices, error) {
	enc, err := b.models.Encoder(ctx)
	if err != nil {
		return nil, err
	}
	ds, err := Distractors(ctx, gen, enc, question, answer, contexts.Body(passage), DefaultDistractors)
	if err != nil {
		return nil, err
	}
	if len(ds) == 0 {
		return nil, ErrNoDistractors
	}

	options := append([]string{answer}, ds...)
	idx := 0
	b.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
		switch idx {
		case i:
			idx = j
		case j:
			idx = i
		}
	})
	return &Choices{Options: options, AnswerIndex: idx, Distractors: ds}, nil
}
