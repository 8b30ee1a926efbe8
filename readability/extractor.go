// Package readability extracts main content with go-readability, the
// Mozilla Readability port. Pages without an article-like body are reported
// as not found.
package readability

import (
	"strings"

	"github.com/fwojciec/animgen"
	"github.com/go-shiori/go-readability"
)

var _ animgen.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*animgen.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, animgen.Errorf(animgen.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, animgen.Errorf(animgen.ENOTFOUND, "no readable content: %v", err)
	}
	if strings.TrimSpace(article.TextContent) == "" {
		return nil, animgen.Errorf(animgen.ENOTFOUND, "no readable content")
	}

	return &animgen.ExtractResult{
		Title:       article.Title,
		ContentHTML: article.Content,
	}, nil
}
