package mock

import (
	"context"

	"github.com/fwojciec/animgen"
)

var _ animgen.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of animgen.SitemapService.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *animgen.URLFilter) ([]string, error)
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *animgen.URLFilter) ([]string, error) {
	return s.DiscoverURLsFn(ctx, baseURL, filter)
}
