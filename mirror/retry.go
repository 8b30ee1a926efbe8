package mirror

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/animgen"
)

// DefaultRetryDelays returns the waits between fetch attempts.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// FetchWithRetry fetches url, retrying after each delay in delays. Missing
// pages and invalid URLs are not retried.
func FetchWithRetry(ctx context.Context, fetcher animgen.Fetcher, url string, delays []time.Duration, logger *slog.Logger) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= len(delays); attempt++ {
		html, err := fetcher.Fetch(ctx, url)
		if err == nil {
			return html, nil
		}
		lastErr = err

		if attempt == len(delays) || !retryable(err) {
			break
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if logger != nil {
			logger.Debug("retrying fetch", "url", url, "attempt", attempt+2, "err", err)
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}
	return "", lastErr
}

func retryable(err error) bool {
	switch animgen.ErrorCode(err) {
	case animgen.ENOTFOUND, animgen.EINVALID:
		return false
	}
	return true
}
