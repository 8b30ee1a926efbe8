package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/animgen"
)

var _ animgen.Retriever = (*LoggingRetriever)(nil)

// LoggingRetriever wraps a Retriever with logging.
type LoggingRetriever struct {
	next   animgen.Retriever
	logger *slog.Logger
}

// NewLoggingRetriever creates a new LoggingRetriever.
func NewLoggingRetriever(next animgen.Retriever, logger *slog.Logger) *LoggingRetriever {
	return &LoggingRetriever{next: next, logger: logger}
}

// Retrieve delegates to the wrapped retriever and logs the hit count and
// best score.
func (r *LoggingRetriever) Retrieve(ctx context.Context, query string, opts animgen.SearchOptions) (results []animgen.SearchResult, err error) {
	defer func(begin time.Time) {
		var top float32
		if len(results) > 0 {
			top = results[0].Score
		}
		r.logger.Info("retrieve",
			"query", query,
			"limit", opts.Limit,
			"count", len(results),
			"top_score", top,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Retrieve(ctx, query, opts)
}
