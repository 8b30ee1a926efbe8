package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/animgen"
)

var _ animgen.FrameworkDetector = (*Detector)(nil)

// frameworkMarkers lists selectors unique to each documentation generator,
// checked in order. VitePress comes before VuePress since it reuses some of
// its predecessor's markup.
var frameworkMarkers = []struct {
	framework animgen.Framework
	selectors []string
}{
	{animgen.FrameworkDocusaurus, []string{"#__docusaurus_skipToContent_fallback", ".theme-doc-sidebar-container", "[data-rh][data-theme]"}},
	{animgen.FrameworkMkDocs, []string{"[data-md-color-scheme]", "[data-md-component]", ".md-nav--primary"}},
	{animgen.FrameworkSphinx, []string{".toctree-wrapper", ".wy-nav-side", ".wy-menu-vertical", ".sphinxsidebar", "#furo-main-content"}},
	{animgen.FrameworkVitePress, []string{"#VPContent", ".VPDoc", ".VPDocAsideOutline"}},
	{animgen.FrameworkVuePress, []string{".theme-default-content", ".sidebar-links", ".vuepress-navbar"}},
	{animgen.FrameworkGitBook, []string{"[data-testid='space.sidebar']", "[data-testid='page.desktopTableOfContents']"}},
	{animgen.FrameworkNextra, []string{".nextra-navbar", ".nextra-sidebar", ".nextra-toc"}},
}

// Detector identifies documentation frameworks from HTML content using
// meta generator tags and framework-specific markup.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect analyzes HTML and returns the identified framework.
func (d *Detector) Detect(html string) animgen.Framework {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return animgen.FrameworkUnknown
	}
	return detect(doc)
}

func detect(doc *goquery.Document) animgen.Framework {
	// Meta generator tags are the most reliable signal when present.
	generator, _ := doc.Find("meta[name='generator']").Last().Attr("content")
	if generator = strings.ToLower(generator); generator != "" {
		for _, m := range frameworkMarkers {
			if strings.Contains(generator, string(m.framework)) {
				return m.framework
			}
		}
	}

	for _, m := range frameworkMarkers {
		for _, sel := range m.selectors {
			if doc.Find(sel).Length() > 0 {
				return m.framework
			}
		}
	}
	return animgen.FrameworkUnknown
}
