package main

import (
	"fmt"

	"github.com/fwojciec/animgen/rag"
)

// Run executes the index command.
func (c *IndexCmd) Run(deps *Dependencies) error {
	progress := func(p rag.Progress) {
		if p.Phase == rag.PhaseEmbed && p.Total > 0 {
			fmt.Fprintf(deps.Stdout, "\rembedding [%d/%d]", p.Done, p.Total)
		}
	}

	result, err := deps.Indexer.Build(deps.Ctx, rag.BuildOptions{Force: c.Force, Progress: progress})
	fmt.Fprintf(deps.Stdout, "\r%40s\r", "")
	if err != nil {
		return report(deps, err)
	}

	fmt.Fprintf(deps.Stdout, "Indexed %d pages into %d chunks (%d dimensions) in %s\n",
		result.Pages, result.Chunks-result.Duplicates, result.Dim, elapsed(result.Duration))
	fmt.Fprintf(deps.Stdout, "  embedded: %d  reused: %d  duplicates: %d  skipped pages: %d\n",
		result.Embedded, result.Reused, result.Duplicates, result.Skipped)
	return nil
}
