package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/animgen"
)

var _ animgen.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with debug logging of the detected
// documentation framework.
type LoggingExtractor struct {
	next     animgen.Extractor
	detector animgen.FrameworkDetector
	logger   *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next animgen.Extractor, detector animgen.FrameworkDetector, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, detector: detector, logger: logger}
}

// Extract detects the framework, logs it, and delegates.
func (e *LoggingExtractor) Extract(html string) (result *animgen.ExtractResult, err error) {
	defer func(begin time.Time) {
		framework := string(e.detector.Detect(html))
		if framework == string(animgen.FrameworkUnknown) {
			framework = "(unknown)"
		}
		var title string
		if result != nil {
			title = result.Title
		}
		e.logger.Debug("extract",
			"framework", framework,
			"title", title,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(html)
}
