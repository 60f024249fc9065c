package quiz

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"
)

// Options tune question generation.
type Options struct {
	MaxAnswers    int    // Answer candidates per context.
	MaxPerContext int    // Items collected per context before enforcement.
	Seed          uint64 // 0 seeds from the clock.
}

// Service generates a quiz from a pool of contexts.
type Service struct {
	models Models
	opts   Options
	log    *slog.Logger
}

func NewService(m Models, opts Options, log *slog.Logger) *Service {
	if opts.MaxAnswers <= 0 {
		opts.MaxAnswers = DefaultMaxAnswers
	}
	if opts.MaxPerContext <= 0 {
		opts.MaxPerContext = 2
	}
	if log == nil {
		log = slog.Default()
	}
	return &Service{models: m, opts: opts, log: log}
}

func (s *Service) rng() *rand.Rand {
	seed := s.opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Generate returns exactly max(total, 3) items drawn from passages. An
// empty passage list is ErrNoContexts.
func (s *Service) Generate(ctx context.Context, passages []string, total int) ([]Item, error) {
	if len(passages) == 0 {
		return nil, ErrNoContexts
	}
	target := max(total, len(Types))
	rng := s.rng()
	b := NewBuilder(s.models, rng)
	mcq, err := b.Supports(ctx, MCQ)
	if err != nil {
		return nil, err
	}
	if !mcq {
		s.log.Info("distractors disabled, multiple-choice items become short answers")
	}

	var pool []Item
	for _, p := range passages {
		items, err := s.fromContext(ctx, b, rng, p, mcq)
		if err != nil {
			return nil, err
		}
		pool = append(pool, items...)
		if len(pool) >= target*2 {
			break
		}
	}
	s.log.Info("question pool collected", "pool", len(pool), "target", target, "contexts", len(passages))

	return NewEnforcer(b, rng, s.log).Enforce(ctx, pool, passages, target)
}

// fromContext builds up to MaxPerContext items from one context, each with
// a different answer and a random type. A cloze that cannot be formed
// becomes a short question, as does every MCQ when mcq is false.
func (s *Service) fromContext(ctx context.Context, b *Builder, rng *rand.Rand, passage string, mcq bool) ([]Item, error) {
	answers, err := b.Answers(ctx, passage, s.opts.MaxAnswers)
	if err != nil {
		if fatal(ctx, err) {
			return nil, err
		}
		s.log.Debug("answer extraction failed", "error", err)
		return nil, nil
	}
	rng.Shuffle(len(answers), func(i, j int) { answers[i], answers[j] = answers[j], answers[i] })

	var items []Item
	used := make(map[string]bool)
	for _, ans := range answers {
		if len(items) >= s.opts.MaxPerContext {
			break
		}
		key := strings.ToLower(ans)
		if used[key] || IsBadAnswer(ans) {
			continue
		}

		t := Types[rng.IntN(len(Types))]
		if t == MCQ && !mcq {
			t = Short
		}
		it, err := b.Build(ctx, passage, ans, t)
		if err != nil && t == Cloze && !fatal(ctx, err) {
			it, err = b.Build(ctx, passage, ans, Short)
		}
		if err != nil {
			if fatal(ctx, err) {
				return nil, err
			}
			s.log.Debug("no item", "type", t, "answer", ans, "error", err)
			continue
		}
		items = append(items, it)
		used[key] = true
	}
	return items, nil
}
