package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/animgen"
)

// previewChars bounds chunk text shown without --full.
const previewChars = 200

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	results, err := deps.Retriever.Retrieve(deps.Ctx, c.Query, animgen.SearchOptions{Limit: c.TopK, MinScore: c.MinScore})
	if err != nil {
		return report(deps, err)
	}

	if len(results) == 0 {
		fmt.Fprintln(deps.Stdout, "No matching documentation found.")
		return nil
	}

	for i, r := range results {
		fmt.Fprintf(deps.Stdout, "%d. %s [%.3f]\n", i+1, r.Chunk.Source, r.Score)
		text := r.Chunk.Content
		if !c.Full {
			text = preview(text, previewChars)
		}
		fmt.Fprintf(deps.Stdout, "   %s\n\n", text)
	}
	return nil
}

// preview collapses whitespace and cuts text to max runes.
func preview(text string, max int) string {
	runes := []rune(strings.Join(strings.Fields(text), " "))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max]) + "..."
}
