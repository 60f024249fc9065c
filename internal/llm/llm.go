// Package llm wraps the generative models that write questions and
// distractors.
package llm

import (
	"context"
	"fmt"
)

// Generator samples n decoded completions for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, n int) ([]string, error)
	Model() string
}

// Sampling holds decoding parameters shared by all providers.
type Sampling struct {
	Temperature float32
	TopP        float32
	MaxTokens   int
}

// QuestionSampling matches the question model's decoding settings.
var QuestionSampling = Sampling{Temperature: 0.8, TopP: 0.9, MaxTokens: 80}

// DistractorSampling matches the distractor model's decoding settings.
var DistractorSampling = Sampling{Temperature: 1.0, TopP: 0.9, MaxTokens: 80}

// RetryableError indicates a transient provider failure (rate limit or 5xx).
// Callers treat it like any other failed generation; it is kept distinct so
// it can be logged and counted separately.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
