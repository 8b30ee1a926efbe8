package animgen

import (
	"context"
	"net/url"
	"regexp"
	"strings"
)

// SitemapService discovers documentation URLs from website sitemaps.
type SitemapService interface {
	// DiscoverURLs finds all URLs from a site's sitemap.
	// It first checks robots.txt for sitemap directives, then falls back
	// to /sitemap.xml. Sitemap indexes are resolved recursively.
	// If filter is nil, all URLs are returned.
	DiscoverURLs(ctx context.Context, baseURL string, filter *URLFilter) ([]string, error)
}

// URLFilter selects which discovered URLs get mirrored.
type URLFilter struct {
	// PathPrefix keeps only URLs whose path starts with the prefix,
	// e.g. "/en/stable/" for one documentation version.
	PathPrefix string

	// Include patterns - if set, only URLs matching at least one pattern are included.
	Include []*regexp.Regexp

	// Exclude patterns - URLs matching any pattern are excluded.
	// Exclude is applied after Include.
	Exclude []*regexp.Regexp
}

// Match returns true if the URL passes the filter.
// If the filter is nil, all URLs pass.
func (f *URLFilter) Match(rawURL string) bool {
	if f == nil {
		return true
	}

	if f.PathPrefix != "" {
		u, err := url.Parse(rawURL)
		if err != nil || !strings.HasPrefix(u.Path, f.PathPrefix) {
			return false
		}
	}

	if len(f.Include) > 0 && !matchAny(f.Include, rawURL) {
		return false
	}

	return !matchAny(f.Exclude, rawURL)
}

func matchAny(patterns []*regexp.Regexp, s string) bool {
	for _, re := range patterns {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// LinkExtractor finds same-site documentation links in a page. It is used
// to crawl sites that publish no sitemap.
type LinkExtractor interface {
	// ExtractLinks returns absolute URLs on the same host as baseURL whose
	// path starts with baseURL's path, in document order, without duplicates.
	ExtractLinks(html string, baseURL string) ([]string, error)
}
