package animgen

import "strings"

// FormatContext joins retrieved chunks into the documentation context
// placed in a prompt. Chunks are separated by blank lines.
func FormatContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	parts := make([]string, 0, len(results))
	for _, r := range results {
		if r.Chunk == nil {
			continue
		}
		parts = append(parts, r.Chunk.Content)
	}

	return strings.Join(parts, "\n\n")
}
