package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/animgen"
)

var _ animgen.Generator = (*LoggingGenerator)(nil)

// LoggingGenerator wraps a Generator with logging of each model call.
type LoggingGenerator struct {
	next   animgen.Generator
	logger *slog.Logger
}

// NewLoggingGenerator creates a new LoggingGenerator.
func NewLoggingGenerator(next animgen.Generator, logger *slog.Logger) *LoggingGenerator {
	return &LoggingGenerator{next: next, logger: logger}
}

// Generate delegates to the wrapped generator and logs prompt and response
// sizes.
func (g *LoggingGenerator) Generate(ctx context.Context, prompt string, opts animgen.GenerateOptions) (text string, err error) {
	defer func(begin time.Time) {
		g.logger.Info("generate",
			"model", g.next.Model(),
			"prompt_chars", len(prompt),
			"response_chars", len(text),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return g.next.Generate(ctx, prompt, opts)
}

// Model delegates to the wrapped generator.
func (g *LoggingGenerator) Model() string {
	return g.next.Model()
}
