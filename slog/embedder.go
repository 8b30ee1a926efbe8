package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/animgen"
)

var _ animgen.Embedder = (*LoggingEmbedder)(nil)

// LoggingEmbedder wraps an Embedder with logging. Document batches log at
// debug level since an index build issues many of them.
type LoggingEmbedder struct {
	next   animgen.Embedder
	logger *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next animgen.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, logger: logger}
}

// EmbedDocuments delegates to the wrapped embedder.
func (e *LoggingEmbedder) EmbedDocuments(ctx context.Context, texts []string) (vecs [][]float32, err error) {
	defer func(begin time.Time) {
		e.logger.Debug("embed documents",
			"model", e.next.ModelID(),
			"texts", len(texts),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.EmbedDocuments(ctx, texts)
}

// EmbedQuery delegates to the wrapped embedder.
func (e *LoggingEmbedder) EmbedQuery(ctx context.Context, text string) (vec []float32, err error) {
	defer func(begin time.Time) {
		e.logger.Debug("embed query",
			"model", e.next.ModelID(),
			"dim", len(vec),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.EmbedQuery(ctx, text)
}

// ModelID delegates to the wrapped embedder.
func (e *LoggingEmbedder) ModelID() string {
	return e.next.ModelID()
}
