// Package http fetches documentation pages and sitemaps over plain HTTP,
// for sites that render without JavaScript.
package http

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/animgen"
)

// DefaultFetchTimeout bounds a single request.
const DefaultFetchTimeout = 10 * time.Second

// UserAgent identifies the mirror to documentation servers.
const UserAgent = "animgen-mirror/1.0"

// maxBodyBytes caps a downloaded page.
const maxBodyBytes = 20 << 20

var _ animgen.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML with net/http. It does not execute JavaScript.
type Fetcher struct {
	client  *http.Client
	timeout time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// NewFetcher creates a new Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{timeout: DefaultFetchTimeout}
	for _, opt := range opts {
		opt(f)
	}
	f.client = &http.Client{Timeout: f.timeout}
	return f
}

// Fetch returns the body of url. Non-200 responses are classified with
// statusError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	body, err := get(ctx, f.client, url)
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Close is a no-op; http.Client holds nothing that needs releasing.
func (f *Fetcher) Close() error {
	return nil
}

func get(ctx context.Context, client *http.Client, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, animgen.Errorf(animgen.EINVALID, "invalid URL %q: %v", url, err)
	}
	req.Header.Set("User-Agent", UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, statusError(resp.StatusCode, url)
	}
	return resp.Body, nil
}

// statusError maps an HTTP status to an error code: missing pages are
// ENOTFOUND, throttling and server errors EUNAVAILABLE.
func statusError(status int, url string) error {
	switch {
	case status == http.StatusNotFound || status == http.StatusGone:
		return animgen.Errorf(animgen.ENOTFOUND, "HTTP %d for %s", status, url)
	case status == http.StatusTooManyRequests || status >= 500:
		return animgen.Errorf(animgen.EUNAVAILABLE, "HTTP %d for %s", status, url)
	default:
		return animgen.Errorf(animgen.EINTERNAL, "HTTP %d for %s", status, url)
	}
}
