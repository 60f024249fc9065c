package models

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dgallion1/docquiz/internal/config"
	"github.com/dgallion1/docquiz/internal/llm"
	"github.com/dgallion1/docquiz/internal/sentence"
)

type fakeGenerator struct{ name string }

func (f fakeGenerator) Generate(context.Context, string, int) ([]string, error) {
	return []string{f.name}, nil
}
func (f fakeGenerator) Model() string { return f.name }

func TestRegistry_InjectedGenerator(t *testing.T) {
	r := New(config.Defaults(), nil, nil, WithQuestionGenerator(fakeGenerator{name: "fake"}))
	g, err := r.QuestionGenerator(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Model() != "fake" {
		t.Errorf("expected injected generator, got %q", g.Model())
	}
}

func TestRegistry_LoadErrorHasHint(t *testing.T) {
	cfg := config.Defaults()
	cfg.DistractorProvider = "anthropic"
	r := New(cfg, llm.NewLLMStats(0), nil)

	_, err := r.DistractorGenerator(context.Background())
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected LoadError, got %v", err)
	}
	if le.Model != "distractor" || !strings.Contains(le.Error(), "ENABLE_DISTRACTORS=0") {
		t.Errorf("unexpected load error %v", le)
	}

	// The failure is remembered; the model is not rebuilt.
	_, err2 := r.DistractorGenerator(context.Background())
	if err2 != err {
		t.Errorf("expected cached error, got %v", err2)
	}
}

func TestRegistry_DistractorsDisabled(t *testing.T) {
	cfg := config.Defaults()
	cfg.EnableDistractors = false
	r := New(cfg, nil, nil)
	g, err := r.DistractorGenerator(context.Background())
	if err != nil || g != nil {
		t.Fatalf("expected nil generator and no error, got %v, %v", g, err)
	}

	r = New(cfg, nil, nil, WithDistractorGenerator(fakeGenerator{name: "d"}))
	g, err = r.DistractorGenerator(context.Background())
	if err != nil || g == nil {
		t.Fatalf("expected injected generator to win over the flag, got %v, %v", g, err)
	}
}

func TestRegistry_BuildsOnce(t *testing.T) {
	cfg := config.Defaults()
	cfg.OpenAIBaseURL = "http://localhost:1/v1"
	r := New(cfg, llm.NewLLMStats(0), nil)
	a, err := r.QuestionGenerator(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := r.QuestionGenerator(context.Background())
	if a != b {
		t.Error("expected the same generator instance")
	}
	if _, ok := a.(*llm.Instrumented); !ok {
		t.Errorf("expected instrumented generator, got %T", a)
	}
}

func TestRegistry_Tokenizer(t *testing.T) {
	cfg := config.Defaults()
	cfg.SentenceLanguage = "rule"
	r := New(cfg, nil, nil)
	tok, err := r.Tokenizer()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := tok.(sentence.RuleTokenizer); !ok {
		t.Errorf("expected rule tokenizer, got %T", tok)
	}

	cfg.SentenceLanguage = "klingon"
	_, err = New(cfg, nil, nil).Tokenizer()
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected LoadError, got %v", err)
	}
}

func TestRegistry_UnknownEmbedProvider(t *testing.T) {
	cfg := config.Defaults()
	cfg.EmbedProvider = "word2vec"
	_, err := New(cfg, nil, nil).Encoder(context.Background())
	var le *LoadError
	if !errors.As(err, &le) {
		t.Fatalf("expected LoadError, got %v", err)
	}
}
