// Package mirror downloads a documentation site into a local directory.
// URLs come from the site's sitemap; sites without one are crawled by
// following links from the start page.
package mirror

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/animgen"
	"golang.org/x/sync/errgroup"
)

// Defaults for a mirror run.
const (
	DefaultConcurrency = 5
	DefaultMaxPages    = 1000

	// Bloom filter sizing for crawl deduplication.
	frontierExpectedURLs      = 10000
	frontierFalsePositiveRate = 0.01
)

// Options configures one mirror run.
type Options struct {
	// Filter narrows the mirrored URLs. Nil keeps everything under the
	// base URL.
	Filter *animgen.URLFilter

	// Progress, if set, is called after each page. Calls are serialized.
	Progress animgen.FetchProgressFunc
}

// Result summarizes a mirror run.
type Result struct {
	Discovered int
	Saved      int
	Failed     int
	Bytes      int

	// Crawled is set when the site had no sitemap and links were followed.
	Crawled  bool
	Duration time.Duration
}

// Mirror fetches documentation pages and saves their raw HTML.
type Mirror struct {
	Sitemaps animgen.SitemapService
	Fetcher  animgen.Fetcher
	Store    animgen.HTMLStore

	// Links and Limiter enable crawling sites without a sitemap.
	Links   animgen.LinkExtractor
	Limiter animgen.DomainLimiter

	Concurrency int
	MaxPages    int
	RetryDelays []time.Duration

	Logger *slog.Logger
}

// Run mirrors the site at baseURL. Pages are staged in the store and
// committed only when at least one page was saved; on error or
// cancellation the staged pages are discarded and the previous mirror is
// kept. Returns ENOTFOUND when no page could be saved.
func (m *Mirror) Run(ctx context.Context, baseURL string, opts Options) (result *Result, err error) {
	begin := time.Now()
	logger := m.logger()

	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	defer func() {
		if err != nil {
			if abortErr := m.Store.Abort(); abortErr != nil {
				logger.Warn("cannot discard staged pages", "err", abortErr)
			}
		}
	}()

	progress := serialize(opts.Progress)
	save := func(ctx context.Context, pageURL, html string) error {
		return m.Store.Save(ctx, &animgen.RawPage{URL: pageURL, HTML: html})
	}

	urls, err := m.sitemapURLs(ctx, base.String(), opts.Filter)
	if err != nil {
		return nil, err
	}

	if len(urls) > 0 {
		result, err = m.fetchAll(ctx, urls, save, progress)
	} else if m.Links != nil {
		logger.Info("no sitemap found, crawling links", "url", base.String())
		result, err = m.crawl(ctx, base, opts.Filter, save, progress)
	} else {
		return nil, animgen.Errorf(animgen.ENOTFOUND, "no sitemap found at %s", base.String())
	}
	if err != nil {
		return nil, err
	}

	if result.Saved == 0 {
		return nil, animgen.Errorf(animgen.ENOTFOUND, "no pages could be mirrored from %s (%d failed)", base.String(), result.Failed)
	}
	if err := m.Store.Commit(); err != nil {
		return nil, err
	}

	result.Duration = time.Since(begin)
	logger.Info("mirror complete",
		"url", base.String(),
		"discovered", result.Discovered,
		"saved", result.Saved,
		"failed", result.Failed,
		"crawled", result.Crawled,
		"duration", result.Duration,
	)
	return result, nil
}

// Discover lists the URLs a Run would fetch, without saving anything.
func (m *Mirror) Discover(ctx context.Context, baseURL string, filter *animgen.URLFilter) ([]string, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	urls, err := m.sitemapURLs(ctx, base.String(), filter)
	if err != nil || len(urls) > 0 || m.Links == nil {
		return urls, err
	}

	var found []string
	err = m.walk(ctx, base, filter, func(p *walkedPage) {
		if p.err == nil {
			found = append(found, p.url)
		}
	})
	return found, err
}

// sitemapURLs returns the sitemap URLs capped at MaxPages. Sitemap errors
// other than cancellation are logged and treated as no sitemap.
func (m *Mirror) sitemapURLs(ctx context.Context, baseURL string, filter *animgen.URLFilter) ([]string, error) {
	if m.Sitemaps == nil {
		return nil, nil
	}
	urls, err := m.Sitemaps.DiscoverURLs(ctx, baseURL, filter)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		m.logger().Warn("cannot read sitemap", "url", baseURL, "err", err)
		return nil, nil
	}
	if limit := m.maxPages(); len(urls) > limit {
		m.logger().Warn("sitemap lists more pages than allowed, truncating", "count", len(urls), "max", limit)
		urls = urls[:limit]
	}
	return urls, nil
}

type saveFunc func(ctx context.Context, pageURL, html string) error

// fetchAll downloads urls concurrently. Fetch failures are counted; save
// failures abort the run.
func (m *Mirror) fetchAll(ctx context.Context, urls []string, save saveFunc, progress animgen.FetchProgressFunc) (*Result, error) {
	result := &Result{Discovered: len(urls)}
	var mu sync.Mutex
	completed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.concurrency())
	for _, u := range urls {
		g.Go(func() error {
			html, fetchErr := m.fetch(gctx, u)
			if fetchErr == nil {
				if err := save(gctx, u, html); err != nil {
					return err
				}
			} else if gctx.Err() != nil {
				return gctx.Err()
			}

			mu.Lock()
			completed++
			if fetchErr != nil {
				result.Failed++
				m.logger().Warn("cannot fetch page", "url", u, "err", fetchErr)
			} else {
				result.Saved++
				result.Bytes += len(html)
			}
			event := animgen.FetchProgress{URL: u, Completed: completed, Total: len(urls), Error: fetchErr}
			mu.Unlock()

			progress(event)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// crawl follows links from base and saves each fetched page.
func (m *Mirror) crawl(ctx context.Context, base *url.URL, filter *animgen.URLFilter, save saveFunc, progress animgen.FetchProgressFunc) (*Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	result := &Result{Crawled: true}
	var saveErr error

	err := m.walk(ctx, base, filter, func(p *walkedPage) {
		if saveErr != nil {
			return
		}
		result.Discovered++
		if p.err != nil {
			result.Failed++
			m.logger().Warn("cannot fetch page", "url", p.url, "err", p.err)
		} else if err := save(ctx, p.url, p.html); err != nil {
			saveErr = err
			cancel()
			return
		} else {
			result.Saved++
			result.Bytes += len(p.html)
		}
		progress(animgen.FetchProgress{URL: p.url, Completed: result.Discovered, Error: p.err})
	})
	if saveErr != nil {
		return nil, saveErr
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// fetch applies the per-host rate limit and retries.
func (m *Mirror) fetch(ctx context.Context, pageURL string) (string, error) {
	if m.Limiter != nil {
		u, err := url.Parse(pageURL)
		if err != nil {
			return "", animgen.Errorf(animgen.EINVALID, "invalid URL %q", pageURL)
		}
		if err := m.Limiter.Wait(ctx, u.Host); err != nil {
			return "", err
		}
	}
	delays := m.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	return FetchWithRetry(ctx, m.Fetcher, pageURL, delays, m.Logger)
}

func (m *Mirror) concurrency() int {
	if m.Concurrency <= 0 {
		return DefaultConcurrency
	}
	return m.Concurrency
}

func (m *Mirror) maxPages() int {
	if m.MaxPages <= 0 {
		return DefaultMaxPages
	}
	return m.MaxPages
}

func (m *Mirror) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.Logger
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, animgen.Errorf(animgen.EINVALID, "invalid documentation URL %q: must be http(s)", raw)
	}
	u.Fragment = ""
	return u, nil
}

func serialize(fn animgen.FetchProgressFunc) animgen.FetchProgressFunc {
	if fn == nil {
		return func(animgen.FetchProgress) {}
	}
	var mu sync.Mutex
	return func(p animgen.FetchProgress) {
		mu.Lock()
		defer mu.Unlock()
		fn(p)
	}
}
