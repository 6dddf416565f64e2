// Package generate wraps chat-model text generation with bounded retry.
package generate

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Generator produces text from a system profile and a prompt.
// Implementations may fail transiently; callers receive a *Error
// once the retry budget is exhausted.
type Generator interface {
	Generate(ctx context.Context, profile, prompt string) (string, error)
}

// Error reports a generation failure after all retry attempts.
type Error struct {
	Attempts int
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("generation failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// ChatModel is the subset of eino's chat model used for generation.
// model.ToolCallingChatModel satisfies it.
type ChatModel interface {
	Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error)
}

// ModelGenerator implements Generator on top of an eino chat model,
// retrying transient failures with linear backoff. Retries are fresh
// generations: callers must not assume retried output is identical.
type ModelGenerator struct {
	model       ChatModel
	maxAttempts int
	backoff     time.Duration
}

// Option configures a ModelGenerator.
type Option func(*ModelGenerator)

// WithMaxAttempts sets the retry budget (minimum 1).
func WithMaxAttempts(n int) Option {
	return func(g *ModelGenerator) {
		if n > 0 {
			g.maxAttempts = n
		}
	}
}

// WithBackoff sets the base backoff; attempt n waits n*backoff.
func WithBackoff(d time.Duration) Option {
	return func(g *ModelGenerator) {
		if d > 0 {
			g.backoff = d
		}
	}
}

// NewModelGenerator creates a generator over the given chat model.
func NewModelGenerator(m ChatModel, opts ...Option) *ModelGenerator {
	g := &ModelGenerator{
		model:       m,
		maxAttempts: 3,
		backoff:     500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate calls the chat model with profile as the system message and
// prompt as the user message, retrying up to the configured budget.
func (g *ModelGenerator) Generate(ctx context.Context, profile, prompt string) (string, error) {
	msgs := []*schema.Message{
		{Role: schema.System, Content: profile},
		{Role: schema.User, Content: prompt},
	}

	var lastErr error
	for attempt := 1; attempt <= g.maxAttempts; attempt++ {
		resp, err := g.model.Generate(ctx, msgs)
		if err == nil {
			return resp.Content, nil
		}
		lastErr = err

		if attempt < g.maxAttempts {
			slog.Warn("generation attempt failed, retrying",
				"attempt", attempt, "max_attempts", g.maxAttempts, "error", err)

			select {
			case <-time.After(time.Duration(attempt) * g.backoff):
			case <-ctx.Done():
				return "", &Error{Attempts: attempt, Err: ctx.Err()}
			}
		}
	}

	return "", &Error{Attempts: g.maxAttempts, Err: lastErr}
}

var _ Generator = (*ModelGenerator)(nil)
