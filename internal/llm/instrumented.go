package llm

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Instrumented records the latency of every call into stats and logs
// failures. It does not retry.
type Instrumented struct {
	Generator
	stats *LLMStats
	log   *slog.Logger
	role  string
}

// Instrument wraps g. role names the model's job ("question", "distractor")
// in log lines.
func Instrument(g Generator, role string, stats *LLMStats, log *slog.Logger) *Instrumented {
	if log == nil {
		log = slog.Default()
	}
	return &Instrumented{Generator: g, stats: stats, log: log, role: role}
}

// Generate implements Generator.
func (i *Instrumented) Generate(ctx context.Context, prompt string, n int) ([]string, error) {
	start := time.Now()
	out, err := i.Generator.Generate(ctx, prompt, n)
	if i.stats != nil {
		i.stats.Record(i.role, time.Since(start).Milliseconds(), err != nil)
	}
	if err != nil {
		var re *RetryableError
		if errors.As(err, &re) {
			i.log.Warn("transient model failure", "role", i.role, "model", i.Model(), "status", re.StatusCode)
		} else {
			i.log.Debug("model call failed", "role", i.role, "model", i.Model(), "error", err)
		}
		return nil, err
	}
	return out, nil
}
