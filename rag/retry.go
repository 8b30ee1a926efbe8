package rag

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/animgen"
)

// DefaultRetryDelays returns the backoff delays between attempts: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// Retry calls fn until it succeeds, fails with an error other than
// EUNAVAILABLE, or len(delays)+1 attempts have been made.
func Retry[T any](ctx context.Context, delays []time.Duration, logger *slog.Logger, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if animgen.ErrorCode(err) != animgen.EUNAVAILABLE || attempt >= len(delays) {
			return zero, err
		}

		if logger != nil {
			logger.Warn("retrying", "op", op, "attempt", attempt+2, "delay", delays[attempt], "err", err)
		}

		select {
		case <-ctx.Done():
			return zero, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}
}

var _ animgen.Generator = (*RetryGenerator)(nil)

// RetryGenerator retries a Generator while the provider is unavailable.
type RetryGenerator struct {
	Next   animgen.Generator
	Delays []time.Duration
	Logger *slog.Logger
}

// WithRetry wraps g with the default retry delays.
func WithRetry(g animgen.Generator, logger *slog.Logger) *RetryGenerator {
	return &RetryGenerator{Next: g, Delays: DefaultRetryDelays(), Logger: logger}
}

// Generate delegates to Next with retries.
func (g *RetryGenerator) Generate(ctx context.Context, prompt string, opts animgen.GenerateOptions) (string, error) {
	return Retry(ctx, g.Delays, g.Logger, "generate", func(ctx context.Context) (string, error) {
		return g.Next.Generate(ctx, prompt, opts)
	})
}

// Model delegates to Next.
func (g *RetryGenerator) Model() string {
	return g.Next.Model()
}

var _ animgen.Embedder = (*RetryEmbedder)(nil)

// RetryEmbedder retries an Embedder while the provider is unavailable.
type RetryEmbedder struct {
	Next   animgen.Embedder
	Delays []time.Duration
	Logger *slog.Logger
}

// WithEmbedRetry wraps e with the default retry delays.
func WithEmbedRetry(e animgen.Embedder, logger *slog.Logger) *RetryEmbedder {
	return &RetryEmbedder{Next: e, Delays: DefaultRetryDelays(), Logger: logger}
}

// EmbedDocuments delegates to Next with retries.
func (e *RetryEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	return Retry(ctx, e.Delays, e.Logger, "embed documents", func(ctx context.Context) ([][]float32, error) {
		return e.Next.EmbedDocuments(ctx, texts)
	})
}

// EmbedQuery delegates to Next with retries.
func (e *RetryEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return Retry(ctx, e.Delays, e.Logger, "embed query", func(ctx context.Context) ([]float32, error) {
		return e.Next.EmbedQuery(ctx, text)
	})
}

// ModelID delegates to Next.
func (e *RetryEmbedder) ModelID() string {
	return e.Next.ModelID()
}
