package mirror

import (
	"context"
	"sync"

	"github.com/fwojciec/animgen"
	"golang.org/x/time/rate"
)

// DefaultRequestsPerSecond paces requests to one documentation host.
const DefaultRequestsPerSecond = 5

var _ animgen.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter keeps one token bucket per host, so requests to different
// hosts do not wait on each other.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter allows rps requests per second to each host, without
// bursting.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until a request to domain is allowed or ctx is done.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}
