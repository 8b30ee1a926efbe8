package mirror

import (
	"context"
	"net/url"
	"strings"
	"sync"

	"github.com/fwojciec/animgen"
)

// walkedPage is the outcome of fetching one crawled URL.
type walkedPage struct {
	url   string
	html  string
	links []string
	err   error
}

// walk crawls from base, fetching pages with a pool of workers and
// following links that stay on base's host under base's path. visit is
// called for every fetched page from a single goroutine. At most MaxPages
// URLs are fetched. walk returns ctx.Err() when ctx is done.
func (m *Mirror) walk(ctx context.Context, base *url.URL, filter *animgen.URLFilter, visit func(*walkedPage)) error {
	prefix := base.Path
	if i := strings.LastIndex(prefix, "/"); i >= 0 {
		prefix = prefix[:i+1]
	}
	inScope := func(raw string) bool {
		u, err := url.Parse(raw)
		if err != nil || u.Host != base.Host || !strings.HasPrefix(u.Path, prefix) {
			return false
		}
		return filter.Match(raw)
	}

	frontier := NewFrontier(frontierExpectedURLs, frontierFalsePositiveRate)
	frontier.Push(base.String())

	concurrency := m.concurrency()
	workCh := make(chan string)
	resultCh := make(chan *walkedPage)

	var wg sync.WaitGroup
	for range concurrency {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for u := range workCh {
				p := m.visitURL(ctx, u)
				select {
				case resultCh <- p:
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	handle := func(p *walkedPage) {
		for _, link := range p.links {
			if inScope(link) {
				frontier.Push(link)
			}
		}
		visit(p)
	}

	limit := m.maxPages()
	dispatched, pending := 0, 0
	next, ok := frontier.Pop()

loop:
	for ok || pending > 0 {
		// A nil channel blocks, so no work is offered once the limit is hit
		// or the frontier is empty.
		var work chan string
		if ok && dispatched < limit {
			work = workCh
		} else if pending == 0 {
			break
		}

		select {
		case <-ctx.Done():
			break loop
		case work <- next:
			dispatched++
			pending++
			next, ok = "", false
		case p := <-resultCh:
			pending--
			handle(p)
		}

		if !ok && dispatched < limit {
			next, ok = frontier.Pop()
		}
	}

	close(workCh)
	for p := range resultCh {
		if ctx.Err() == nil {
			handle(p)
		}
	}
	return ctx.Err()
}

// visitURL fetches one page and collects its links.
func (m *Mirror) visitURL(ctx context.Context, pageURL string) *walkedPage {
	p := &walkedPage{url: pageURL}
	p.html, p.err = m.fetch(ctx, pageURL)
	if p.err != nil {
		return p
	}
	links, err := m.Links.ExtractLinks(p.html, pageURL)
	if err != nil {
		m.logger().Debug("cannot extract links", "url", pageURL, "err", err)
		return p
	}
	p.links = links
	return p
}
