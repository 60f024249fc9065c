// Package models owns the process-wide model clients. Each model is built
// on first use and shared read-only afterwards.
package models

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"google.golang.org/genai"

	"github.com/dgallion1/docquiz/internal/config"
	"github.com/dgallion1/docquiz/internal/embed"
	"github.com/dgallion1/docquiz/internal/llm"
	"github.com/dgallion1/docquiz/internal/nlp"
	"github.com/dgallion1/docquiz/internal/sentence"
)

// LoadError reports a model that could not be constructed. Hint tells the
// operator how to get past it.
type LoadError struct {
	Model string
	Hint  string
	Err   error
}

func (e *LoadError) Error() string {
	msg := fmt.Sprintf("load %s model: %v", e.Model, e.Err)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *LoadError) Unwrap() error { return e.Err }

// lazy builds a value at most once.
type lazy[T any] struct {
	once sync.Once
	val  T
	err  error
}

func (l *lazy[T]) get(build func() (T, error)) (T, error) {
	l.once.Do(func() {
		l.val, l.err = build()
	})
	return l.val, l.err
}

// Registry hands out the question generator, distractor generator,
// sentence encoder, tokenizer and tagger.
type Registry struct {
	cfg   config.Config
	log   *slog.Logger
	stats *llm.LLMStats

	question   lazy[llm.Generator]
	distractor lazy[llm.Generator]
	encoder    lazy[embed.Encoder]
	tokenizer  lazy[sentence.Tokenizer]
	tagger     lazy[nlp.Tagger]
	gemini     lazy[*genai.Client]

	distractorInjected bool

	closers []func()
	mu      sync.Mutex
}

// Option overrides a model slot, mainly for tests and embedding callers.
type Option func(*Registry)

func WithQuestionGenerator(g llm.Generator) Option {
	return func(r *Registry) { r.question.once.Do(func() { r.question.val = g }) }
}

func WithDistractorGenerator(g llm.Generator) Option {
	return func(r *Registry) {
		r.distractorInjected = true
		r.distractor.once.Do(func() { r.distractor.val = g })
	}
}

func WithEncoder(e embed.Encoder) Option {
	return func(r *Registry) { r.encoder.once.Do(func() { r.encoder.val = e }) }
}

func WithTokenizer(t sentence.Tokenizer) Option {
	return func(r *Registry) { r.tokenizer.once.Do(func() { r.tokenizer.val = t }) }
}

func WithTagger(t nlp.Tagger) Option {
	return func(r *Registry) { r.tagger.once.Do(func() { r.tagger.val = t }) }
}

// New creates an empty registry. Nothing is loaded until first use.
func New(cfg config.Config, stats *llm.LLMStats, log *slog.Logger, opts ...Option) *Registry {
	if log == nil {
		log = slog.Default()
	}
	r := &Registry{cfg: cfg, log: log, stats: stats}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Stats returns the latency tracker shared by the generators.
func (r *Registry) Stats() *llm.LLMStats { return r.stats }

// QuestionGenerator returns the question model.
func (r *Registry) QuestionGenerator(ctx context.Context) (llm.Generator, error) {
	return r.question.get(func() (llm.Generator, error) {
		g, err := r.newGenerator(ctx, r.cfg.QuestionProvider, r.cfg.QuestionModel, llm.QuestionSampling)
		if err != nil {
			return nil, &LoadError{
				Model: "question",
				Hint:  "check QUESTION_PROVIDER and its API key, or choose a smaller QUESTION_MODEL",
				Err:   err,
			}
		}
		r.log.Info("model loaded", "role", "question", "provider", r.cfg.QuestionProvider, "model", g.Model())
		return llm.Instrument(g, "question", r.stats, r.log), nil
	})
}

// DistractorGenerator returns the distractor model, or nil when distractors
// are disabled.
func (r *Registry) DistractorGenerator(ctx context.Context) (llm.Generator, error) {
	if !r.cfg.EnableDistractors && !r.distractorInjected {
		return nil, nil
	}
	return r.distractor.get(func() (llm.Generator, error) {
		g, err := r.newGenerator(ctx, r.cfg.DistractorProvider, r.cfg.DistractorModel, llm.DistractorSampling)
		if err != nil {
			return nil, &LoadError{
				Model: "distractor",
				Hint:  "set ENABLE_DISTRACTORS=0 or DISTRACTOR_MODEL to a smaller model",
				Err:   err,
			}
		}
		r.log.Info("model loaded", "role", "distractor", "provider", r.cfg.DistractorProvider, "model", g.Model())
		return llm.Instrument(g, "distractor", r.stats, r.log), nil
	})
}

// Encoder returns the sentence embedding encoder.
func (r *Registry) Encoder(ctx context.Context) (embed.Encoder, error) {
	return r.encoder.get(func() (embed.Encoder, error) {
		var enc embed.Encoder
		switch r.cfg.EmbedProvider {
		case "openai":
			enc = embed.NewOpenAIEncoder(r.cfg.OpenAIAPIKey, r.cfg.OpenAIBaseURL, r.cfg.EmbedModel)
		case "cohere":
			enc = embed.NewCohereEncoder(r.cfg.CohereAPIKey, r.cfg.EmbedModel)
		case "gemini":
			client, err := r.geminiClient(ctx)
			if err != nil {
				return nil, &LoadError{Model: "embedding", Hint: "check GEMINI_API_KEY", Err: err}
			}
			enc = embed.NewGeminiEncoder(client, r.cfg.EmbedModel)
		default:
			return nil, &LoadError{
				Model: "embedding",
				Hint:  "EMBED_PROVIDER must be openai, cohere or gemini",
				Err:   fmt.Errorf("unknown provider %q", r.cfg.EmbedProvider),
			}
		}
		r.log.Info("model loaded", "role", "embedding", "provider", r.cfg.EmbedProvider, "model", r.cfg.EmbedModel)
		return enc, nil
	})
}

// Tokenizer returns the sentence tokenizer.
func (r *Registry) Tokenizer() (sentence.Tokenizer, error) {
	return r.tokenizer.get(func() (sentence.Tokenizer, error) {
		tok, err := sentence.NewTokenizer(r.cfg.SentenceLanguage)
		if err != nil {
			return nil, &LoadError{Model: "sentence tokenizer", Hint: "set SENTENCE_LANGUAGE to english or rule", Err: err}
		}
		return tok, nil
	})
}

// Tagger returns the entity and noun-phrase tagger.
func (r *Registry) Tagger() (nlp.Tagger, error) {
	return r.tagger.get(func() (nlp.Tagger, error) {
		return nlp.ProseTagger{}, nil
	})
}

// Close releases idle connections held by loaded clients.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.closers {
		c()
	}
	r.closers = nil
}

func (r *Registry) newGenerator(ctx context.Context, provider, model string, s llm.Sampling) (llm.Generator, error) {
	switch provider {
	case "openai":
		if r.cfg.OpenAIAPIKey == "" && r.cfg.OpenAIBaseURL == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY or OPENAI_BASE_URL is required")
		}
		return llm.NewOpenAIGenerator(r.cfg.OpenAIAPIKey, r.cfg.OpenAIBaseURL, model, s), nil
	case "anthropic":
		if r.cfg.AnthropicAPIKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is required")
		}
		g := llm.NewAnthropicGenerator(r.cfg.AnthropicAPIKey, model, s)
		r.addCloser(g.Close)
		return g, nil
	case "gemini":
		client, err := r.geminiClient(ctx)
		if err != nil {
			return nil, err
		}
		return llm.NewGeminiGenerator(client, model, s), nil
	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}

// geminiClient is shared between generation and embedding.
func (r *Registry) geminiClient(ctx context.Context) (*genai.Client, error) {
	return r.gemini.get(func() (*genai.Client, error) {
		if r.cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required")
		}
		c, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  r.cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, fmt.Errorf("gemini client: %w", err)
		}
		return c, nil
	})
}

func (r *Registry) addCloser(fn func()) {
	r.mu.Lock()
	r.closers = append(r.closers, fn)
	r.mu.Unlock()
}
