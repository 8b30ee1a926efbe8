package animgen

// Converter turns clean HTML into the text that gets chunked and embedded.
type Converter interface {
	// Convert transforms HTML content into plain text or Markdown.
	// The input should be clean HTML (e.g., from an Extractor).
	Convert(html string) (string, error)
}
