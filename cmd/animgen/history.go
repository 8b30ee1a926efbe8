package main

import (
	"fmt"
	"strings"

	"github.com/fwojciec/animgen"
)

// Run executes the history command.
func (c *HistoryCmd) Run(deps *Dependencies) error {
	if c.ID != "" {
		g, err := deps.History.FindGenerationByID(deps.Ctx, c.ID)
		if err != nil {
			return report(deps, err)
		}
		printGeneration(deps, g)
		return nil
	}

	filter := animgen.GenerationFilter{Limit: c.Limit, Offset: c.Offset}
	if c.Query != "" {
		filter.Query = &c.Query
	}
	gens, err := deps.History.FindGenerations(deps.Ctx, filter)
	if err != nil {
		return report(deps, err)
	}

	if len(gens) == 0 {
		fmt.Fprintln(deps.Stdout, "No generations found. Use 'animgen generate' to create one.")
		return nil
	}

	for _, g := range gens {
		fmt.Fprintf(deps.Stdout, "%s  %s  %-8s  %s\n",
			g.ID, g.CreatedAt.Local().Format("2006-01-02 15:04"), status(g), g.Query)
	}
	return nil
}

func status(g *animgen.Generation) string {
	switch {
	case g.Fallback:
		return "fallback"
	case g.RenderError != "":
		return "failed"
	case g.Rendered:
		return "rendered"
	default:
		return "ok"
	}
}

func printGeneration(deps *Dependencies, g *animgen.Generation) {
	w := deps.Stdout
	fmt.Fprintf(w, "ID:       %s\n", g.ID)
	fmt.Fprintf(w, "Query:    %s\n", g.Query)
	fmt.Fprintf(w, "Model:    %s\n", g.Model)
	fmt.Fprintf(w, "File:     %s\n", g.FilePath)
	fmt.Fprintf(w, "Class:    %s\n", g.ClassName)
	fmt.Fprintf(w, "Status:   %s\n", status(g))
	fmt.Fprintf(w, "Duration: %s\n", elapsed(g.Duration))
	fmt.Fprintf(w, "Created:  %s\n", g.CreatedAt.Local().Format("2006-01-02 15:04:05"))
	if g.RenderError != "" {
		fmt.Fprintf(w, "Error:    %s\n", g.RenderError)
	}
	if len(g.OutputFiles) > 0 {
		fmt.Fprintf(w, "Output:   %s\n", strings.Join(g.OutputFiles, ", "))
	}
}
