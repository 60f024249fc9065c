package quiz

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"slices"

	"github.com/dgallion1/docquiz/internal/models"
)

// Source produces answers and items for the mix enforcer. *Builder
// implements it.
type Source interface {
	Answers(ctx context.Context, passage string, max int) ([]string, error)
	Build(ctx context.Context, passage, answer string, t Type) (Item, error)
	Supports(ctx context.Context, t Type) (bool, error)
}

// buildable returns the types src can produce, in Types order. Short is
// always among them.
func buildable(ctx context.Context, src Source) ([]Type, error) {
	kinds := make([]Type, 0, len(Types))
	for _, t := range Types {
		ok, err := src.Supports(ctx, t)
		if err != nil {
			return nil, err
		}
		if ok || t == Short {
			kinds = append(kinds, t)
		}
	}
	return kinds, nil
}

// missingTypeAnswers is the answer budget per context when synthesizing a
// type the pool lacks.
const missingTypeAnswers = 6

// Dedupe drops items with an empty question and repeats of an earlier
// (type, question) pair.
func Dedupe(items []Item) []Item {
	seen := make(map[Key]bool, len(items))
	out := make([]Item, 0, len(items))
	for _, it := range items {
		if it.Question == "" || seen[it.Key()] {
			continue
		}
		seen[it.Key()] = true
		out = append(out, it)
	}
	return out
}

// Enforcer assembles exactly target items covering every question type.
type Enforcer struct {
	src Source
	rng *rand.Rand
	log *slog.Logger
}

func NewEnforcer(src Source, rng *rand.Rand, log *slog.Logger) *Enforcer {
	if log == nil {
		log = slog.Default()
	}
	return &Enforcer{src: src, rng: rng, log: log}
}

// mix is the state of one Enforce call.
type mix struct {
	picked []Item
	seen   map[Key]bool
	has    map[Type]bool
	cache  map[string][]string
	kinds  []Type
}

func (m *mix) add(it Item) bool {
	if m.seen[it.Key()] {
		return false
	}
	m.seen[it.Key()] = true
	m.has[it.Type] = true
	m.picked = append(m.picked, it)
	return true
}

// Enforce returns exactly max(target, len(Types)) items with every type
// present. Pool items are preferred; missing types are synthesized from
// contexts, then filled with placeholders. The only errors are model load
// failures and context cancellation.
func (e *Enforcer) Enforce(ctx context.Context, pool []Item, passages []string, target int) ([]Item, error) {
	target = max(target, len(Types))
	if len(passages) == 0 {
		passages = []string{""}
	}
	pool = Dedupe(pool)
	kinds, err := buildable(ctx, e.src)
	if err != nil {
		return nil, err
	}
	m := &mix{
		seen:  make(map[Key]bool),
		has:   make(map[Type]bool),
		cache: make(map[string][]string),
		kinds: kinds,
	}
	used := make([]bool, len(pool))

	// One pool item per type, first match wins.
	for i, it := range pool {
		if len(m.has) == len(Types) {
			break
		}
		if slices.Contains(Types, it.Type) && !m.has[it.Type] {
			m.add(it)
			used[i] = true
		}
	}

	for _, t := range Types {
		if m.has[t] {
			continue
		}
		it, ok, err := e.synthesize(ctx, m, t, passages)
		if err != nil {
			return nil, err
		}
		if ok {
			m.add(it)
		}
	}

	for _, t := range Types {
		if !m.has[t] {
			e.log.Debug("placeholder for missing type", "type", t)
			m.add(Placeholder(t, passages[0], 0))
		}
	}

	for i, it := range pool {
		if len(m.picked) >= target {
			break
		}
		if !used[i] {
			m.add(it)
		}
	}

	if err := e.extras(ctx, m, passages, target); err != nil {
		return nil, err
	}

	// Pad with placeholders so the shape is always exact.
	for n := 1; len(m.picked) < target; n++ {
		t := m.kinds[len(m.picked)%len(m.kinds)]
		p := Placeholder(t, passages[n%len(passages)], n/len(passages))
		if !m.add(p) && n > target*len(Types)*4 {
			// Every placeholder collides; allow repeats rather than loop.
			m.picked = append(m.picked, p)
		}
	}

	return m.picked[:target], nil
}

// synthesize tries each context's shuffled answers until an item of type
// t is built. A cloze that no sentence supports falls back to the
// templated cloze for the first such answer.
func (e *Enforcer) synthesize(ctx context.Context, m *mix, t Type, passages []string) (Item, bool, error) {
	if !slices.Contains(m.kinds, t) {
		return Item{}, false, nil
	}
	var fallback *Item
	for _, p := range passages {
		answers, err := e.answers(ctx, m, p, missingTypeAnswers)
		if err != nil {
			return Item{}, false, err
		}
		answers = slices.Clone(answers)
		e.rng.Shuffle(len(answers), func(i, j int) { answers[i], answers[j] = answers[j], answers[i] })

		for _, ans := range answers {
			if IsBadAnswer(ans) {
				continue
			}
			it, err := e.src.Build(ctx, p, ans, t)
			if err != nil {
				if fatal(ctx, err) {
					return Item{}, false, err
				}
				if t == Cloze && fallback == nil && errors.Is(err, ErrNoCloze) {
					fb := Item{Context: p, Type: Cloze, Question: ClozeFallback(ans), Answer: ans}
					if !m.seen[fb.Key()] {
						fallback = &fb
					}
				}
				continue
			}
			if !m.seen[it.Key()] {
				return it, true, nil
			}
		}
	}
	if fallback != nil {
		return *fallback, true, nil
	}
	return Item{}, false, nil
}

// extras generates items of random type until target is reached or the
// contexts run out.
func (e *Enforcer) extras(ctx context.Context, m *mix, passages []string, target int) error {
	for _, p := range passages {
		if len(m.picked) >= target {
			return nil
		}
		answers, err := e.answers(ctx, m, p, target*2)
		if err != nil {
			return err
		}
		e.rng.Shuffle(len(answers), func(i, j int) { answers[i], answers[j] = answers[j], answers[i] })

		for _, ans := range answers {
			if len(m.picked) >= target {
				return nil
			}
			if IsBadAnswer(ans) {
				continue
			}
			t := m.kinds[e.rng.IntN(len(m.kinds))]
			it, err := e.src.Build(ctx, p, ans, t)
			if err != nil {
				if fatal(ctx, err) {
					return err
				}
				continue
			}
			m.add(it)
		}
	}
	return nil
}

// answers returns the cached candidates for passage, extracting up to max
// when nothing is cached yet.
func (e *Enforcer) answers(ctx context.Context, m *mix, passage string, max int) ([]string, error) {
	if cached := m.cache[passage]; len(cached) > 0 {
		return cached, nil
	}
	answers, err := e.src.Answers(ctx, passage, max)
	if err != nil {
		if fatal(ctx, err) {
			return nil, err
		}
		e.log.Debug("answer extraction failed", "error", err)
		return nil, nil
	}
	m.cache[passage] = answers
	return answers, nil
}

// fatal separates load failures and cancellation from per-item misses.
func fatal(ctx context.Context, err error) bool {
	var le *models.LoadError
	return errors.As(err, &le) || ctx.Err() != nil
}
