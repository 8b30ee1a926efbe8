package main

import (
	"fmt"

	"github.com/fwojciec/animgen/rag"
)

// Run executes the generate command.
func (c *GenerateCmd) Run(deps *Dependencies) error {
	result, err := deps.Studio.Generate(deps.Ctx, rag.GenerateRequest{
		Query:         c.Query,
		NoElaborate:   c.NoElaborate,
		Wrap:          c.Wrap,
		Render:        c.Render,
		RenderOptions: c.options(),
		FileName:      c.FileName,
	})
	if err != nil {
		return report(deps, err)
	}

	for _, s := range result.Suggestions {
		fmt.Fprintf(deps.Stderr, "hint: %s\n", s)
	}
	if c.ShowPrompt {
		fmt.Fprintf(deps.Stdout, "%s\n\n", result.Prompt)
	}

	g := result.Generation
	if g.Fallback {
		fmt.Fprintln(deps.Stderr, "warning: code generation failed, wrote the fallback scene")
	}
	fmt.Fprintf(deps.Stdout, "Saved %s\n", g.FilePath)
	if g.ClassName != "" {
		fmt.Fprintf(deps.Stdout, "Scene: %s\n", g.ClassName)
	} else {
		fmt.Fprintln(deps.Stderr, "warning: no scene class found in the generated code")
	}

	switch {
	case g.Rendered:
		for _, f := range g.OutputFiles {
			fmt.Fprintf(deps.Stdout, "Rendered %s\n", f)
		}
	case g.RenderError != "":
		fmt.Fprintf(deps.Stderr, "render failed: %s\n", g.RenderError)
	case !c.Render && g.ClassName != "":
		fmt.Fprintf(deps.Stdout, "Render with: animgen render %s %s\n", g.FilePath, g.ClassName)
	}
	if g.ID != "" {
		fmt.Fprintf(deps.Stdout, "Generation: %s\n", g.ID)
	}
	return nil
}
