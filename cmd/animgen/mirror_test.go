package main_test

import (
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/fwojciec/animgen"
	main "github.com/fwojciec/animgen/cmd/animgen"
	"github.com/fwojciec/animgen/goquery"
	"github.com/fwojciec/animgen/mirror"
	"github.com/fwojciec/animgen/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const docsURL = "https://docs.manim.community/en/stable/"

// newMirror serves pages from a map; the sitemap lists urls.
func newMirror(pages map[string]string, urls []string) (*mirror.Mirror, map[string]string) {
	var mu sync.Mutex
	saved := make(map[string]string)
	return &mirror.Mirror{
		Sitemaps: &mock.SitemapService{
			DiscoverURLsFn: func(_ context.Context, _ string, filter *animgen.URLFilter) ([]string, error) {
				var out []string
				for _, u := range urls {
					if filter.Match(u) {
						out = append(out, u)
					}
				}
				return out, nil
			},
		},
		Fetcher: &mock.Fetcher{
			FetchFn: func(_ context.Context, url string) (string, error) {
				html, ok := pages[url]
				if !ok {
					return "", animgen.Errorf(animgen.ENOTFOUND, "HTTP 404")
				}
				return html, nil
			},
		},
		Store: &mock.HTMLStore{
			SaveFn: func(_ context.Context, page *animgen.RawPage) error {
				mu.Lock()
				defer mu.Unlock()
				saved[page.URL] = page.HTML
				return nil
			},
			CommitFn: func() error { return nil },
			AbortFn:  func() error { return nil },
		},
		Links:       goquery.NewLinkExtractor(),
		Concurrency: 2,
		MaxPages:    10,
		RetryDelays: []time.Duration{},
	}, saved
}

func TestMirrorCmd_Run(t *testing.T) {
	t.Parallel()

	pages := map[string]string{
		docsURL + "index.html":            "<html><body>home</body></html>",
		docsURL + "reference/Circle.html": "<html><body>circle</body></html>",
		docsURL + "changelog/v0.19.html":  "<html><body>changes</body></html>",
	}
	urls := []string{
		docsURL + "index.html",
		docsURL + "reference/Circle.html",
		docsURL + "changelog/v0.19.html",
		docsURL + "reference/Missing.html",
	}

	t.Run("mirrors sitemap pages and prints a summary", func(t *testing.T) {
		t.Parallel()

		m, saved := newMirror(pages, urls)
		stdout := &bytes.Buffer{}
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: stderr, Mirror: m}

		err := (&main.MirrorCmd{URL: docsURL}).Run(deps)

		require.NoError(t, err)
		assert.Len(t, saved, 3)
		assert.Contains(t, stdout.String(), "Mirrored 3 of 4 pages from sitemap")
		assert.Contains(t, stdout.String(), "1 pages failed")
		assert.Contains(t, stderr.String(), "skip "+docsURL+"reference/Missing.html")
	})

	t.Run("exclude patterns narrow the mirror", func(t *testing.T) {
		t.Parallel()

		m, saved := newMirror(pages, urls)
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: &bytes.Buffer{}, Mirror: m}

		err := (&main.MirrorCmd{URL: docsURL, Exclude: []string{"/changelog/", "Missing"}}).Run(deps)

		require.NoError(t, err)
		assert.Len(t, saved, 2)
		assert.NotContains(t, saved, docsURL+"changelog/v0.19.html")
	})

	t.Run("preview lists URLs without saving", func(t *testing.T) {
		t.Parallel()

		m, saved := newMirror(pages, urls)
		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: stdout, Stderr: &bytes.Buffer{}, Mirror: m}

		err := (&main.MirrorCmd{URL: docsURL, Preview: true, Include: []string{"/reference/"}}).Run(deps)

		require.NoError(t, err)
		assert.Empty(t, saved)
		assert.Equal(t, docsURL+"reference/Circle.html\n"+docsURL+"reference/Missing.html\n", stdout.String())
	})

	t.Run("invalid pattern", func(t *testing.T) {
		t.Parallel()

		m, _ := newMirror(pages, urls)
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Mirror: m}

		err := (&main.MirrorCmd{URL: docsURL, Include: []string{"("}}).Run(deps)

		assert.Equal(t, animgen.EINVALID, animgen.ErrorCode(err))
		assert.Contains(t, stderr.String(), "invalid filter pattern")
	})

	t.Run("nothing saved is an error", func(t *testing.T) {
		t.Parallel()

		m, _ := newMirror(map[string]string{}, urls)
		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{Ctx: context.Background(), Stdout: &bytes.Buffer{}, Stderr: stderr, Mirror: m}

		err := (&main.MirrorCmd{URL: docsURL}).Run(deps)

		assert.Equal(t, animgen.ENOTFOUND, animgen.ErrorCode(err))
		assert.Contains(t, stderr.String(), "error: no pages could be mirrored")
	})
}
