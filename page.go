package animgen

import "context"

// Page represents one documentation page after extraction.
type Page struct {
	Source string `json:"source"` // path relative to the docs directory
	Title  string `json:"title"`
	Text   string `json:"text"`
}

// PageSet is the outcome of reading a documentation tree.
type PageSet struct {
	Pages []*Page

	// Skipped lists sources that could not be extracted or had no text.
	Skipped []string
}

// PageSource produces extracted pages from a documentation tree.
type PageSource interface {
	// Pages extracts every page under the source.
	// Returns ENOTFOUND if the source is missing or yields no text.
	Pages(ctx context.Context) (*PageSet, error)
}

// RawPage is a documentation page as downloaded from a site.
type RawPage struct {
	URL  string
	HTML string
}

// FetchProgress reports progress during page fetching.
type FetchProgress struct {
	URL       string
	Completed int
	Total     int
	Error     error
}

// FetchProgressFunc is called as pages are processed.
type FetchProgressFunc func(FetchProgress)

// HTMLStore persists downloaded pages with atomic semantics.
// Save writes to a temporary location; Commit makes changes permanent;
// Abort discards pending changes.
type HTMLStore interface {
	Save(ctx context.Context, page *RawPage) error
	Commit() error
	Abort() error
}
