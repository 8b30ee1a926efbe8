package mirror

import (
	"strings"
	"sync"

	"github.com/fwojciec/animgen/bloom"
)

// Frontier is the queue of URLs waiting to be fetched during a crawl.
// URLs are served first in, first out, and each URL is queued at most once.
// A Bloom filter remembers queued URLs, so at its false positive rate a
// new URL may be mistaken for a seen one and skipped.
// It is safe for concurrent use.
type Frontier struct {
	mu    sync.Mutex
	seen  *bloom.Filter
	queue []string
}

// NewFrontier creates a Frontier sized for n URLs at the given false
// positive rate.
func NewFrontier(n uint, fpRate float64) *Frontier {
	return &Frontier{seen: bloom.NewFilter(n, fpRate)}
}

// Push queues rawURL without its fragment. It returns false when the URL
// was queued before.
func (f *Frontier) Push(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	u := stripFragment(rawURL)
	if f.seen.Seen(u) {
		return false
	}
	f.queue = append(f.queue, u)
	return true
}

// Pop removes and returns the oldest queued URL.
func (f *Frontier) Pop() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return "", false
	}
	u := f.queue[0]
	f.queue[0] = ""
	f.queue = f.queue[1:]
	return u, true
}

// Len returns the number of queued URLs.
func (f *Frontier) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// Seen reports whether rawURL was ever queued.
func (f *Frontier) Seen(rawURL string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen.Test(stripFragment(rawURL))
}

func stripFragment(rawURL string) string {
	if i := strings.IndexByte(rawURL, '#'); i != -1 {
		return rawURL[:i]
	}
	return rawURL
}
