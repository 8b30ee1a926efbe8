package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/animgen"
)

var _ animgen.Renderer = (*LoggingRenderer)(nil)

// LoggingRenderer wraps a Renderer with logging.
type LoggingRenderer struct {
	next   animgen.Renderer
	logger *slog.Logger
}

// NewLoggingRenderer creates a new LoggingRenderer.
func NewLoggingRenderer(next animgen.Renderer, logger *slog.Logger) *LoggingRenderer {
	return &LoggingRenderer{next: next, logger: logger}
}

// Render delegates to the wrapped renderer.
func (r *LoggingRenderer) Render(ctx context.Context, file, className string, opts animgen.RenderOptions) (result *animgen.RenderResult, err error) {
	defer func(begin time.Time) {
		var outputs []string
		if result != nil {
			outputs = result.OutputFiles
		}
		r.logger.Info("render",
			"file", file,
			"class", className,
			"quality", opts.Quality,
			"outputs", outputs,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Render(ctx, file, className, opts)
}
