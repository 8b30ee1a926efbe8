// Package trafilatura extracts main content with go-trafilatura. It suits
// documentation sites whose layout the selector-based extractor does not
// recognize.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/animgen"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

var _ animgen.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract main content from HTML.
type Extractor struct {
	// Fallback enables the readability and dom-distiller fallbacks bundled
	// with trafilatura for pages it cannot parse on its own.
	Fallback bool
}

// NewExtractor creates a new Extractor with fallbacks enabled.
func NewExtractor() *Extractor {
	return &Extractor{Fallback: true}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*animgen.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, animgen.Errorf(animgen.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: e.Fallback,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, animgen.Errorf(animgen.ENOTFOUND, "no main content found: %v", err)
	}
	if result.ContentNode == nil {
		return nil, animgen.Errorf(animgen.ENOTFOUND, "no main content found")
	}

	contentHTML, err := renderNode(result.ContentNode)
	if err != nil {
		return nil, err
	}

	return &animgen.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
