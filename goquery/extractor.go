// Package goquery implements HTML processing on top of goquery: main
// content extraction, plain-text conversion, framework detection and link
// discovery.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/animgen"
)

// DefaultContentSelectors are tried in order to find a page's main content.
var DefaultContentSelectors = []string{"div.main", "article", "div.document"}

// frameworkContent lists content containers per framework, tried when none
// of the configured selectors match.
var frameworkContent = map[animgen.Framework][]string{
	animgen.FrameworkSphinx:     {"div[role='main']", "div.body", "#furo-main-content"},
	animgen.FrameworkMkDocs:     {"article.md-content__inner", "div.md-content"},
	animgen.FrameworkDocusaurus: {".theme-doc-markdown", "main"},
	animgen.FrameworkVitePress:  {".vp-doc", "main"},
	animgen.FrameworkVuePress:   {".theme-default-content"},
	animgen.FrameworkGitBook:    {"main"},
	animgen.FrameworkNextra:     {"main"},
}

// boilerplate is removed from inside the content area.
const boilerplate = "nav, aside, footer, script, style"

var _ animgen.Extractor = (*Extractor)(nil)

// Extractor selects the main content area of documentation pages.
type Extractor struct {
	// Selectors are tried in order; the first match wins.
	Selectors []string
}

// NewExtractor creates an Extractor using DefaultContentSelectors.
func NewExtractor() *Extractor {
	return &Extractor{Selectors: DefaultContentSelectors}
}

// Extract returns the content area of rawHTML with navigation, sidebars,
// footers, scripts and styles removed.
func (e *Extractor) Extract(rawHTML string) (*animgen.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, animgen.Errorf(animgen.EINVALID, "empty HTML input")
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, animgen.Errorf(animgen.EINVALID, "failed to parse HTML: %v", err)
	}

	content := e.contentArea(doc)
	if content == nil {
		return nil, animgen.Errorf(animgen.ENOTFOUND, "no main content area found")
	}
	content.Find(boilerplate).Remove()

	contentHTML, err := goquery.OuterHtml(content)
	if err != nil {
		return nil, err
	}

	return &animgen.ExtractResult{
		Title:       strings.TrimSpace(doc.Find("title").First().Text()),
		ContentHTML: contentHTML,
	}, nil
}

func (e *Extractor) contentArea(doc *goquery.Document) *goquery.Selection {
	for _, sel := range e.Selectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	for _, sel := range frameworkContent[detect(doc)] {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	return nil
}
