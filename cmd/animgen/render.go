package main

import (
	"fmt"
	"os"

	"github.com/fwojciec/animgen"
)

// Run executes the render command.
func (c *RenderCmd) Run(deps *Dependencies) error {
	class := c.Class
	if class == "" {
		code, err := os.ReadFile(c.File)
		if err != nil {
			return report(deps, animgen.Errorf(animgen.ENOTFOUND, "cannot read %s", c.File))
		}
		class, err = animgen.ClassName(string(code))
		if err != nil {
			return report(deps, animgen.Errorf(animgen.EINVALID, "no scene class found in %s; pass the class name", c.File))
		}
	}

	result, renderErr := deps.Renderer.Render(deps.Ctx, c.File, class, c.options())

	if c.ID != "" && deps.History != nil {
		upd := animgen.GenerationUpdate{Rendered: ptr(renderErr == nil)}
		if renderErr != nil {
			upd.RenderError = ptr(animgen.ErrorMessage(renderErr))
		} else {
			upd.RenderError = ptr("")
			upd.OutputFiles = result.OutputFiles
		}
		if _, err := deps.History.UpdateGeneration(deps.Ctx, c.ID, upd); err != nil {
			return report(deps, err)
		}
	}

	if renderErr != nil {
		return report(deps, renderErr)
	}

	if len(result.OutputFiles) == 0 {
		fmt.Fprintf(deps.Stdout, "Rendered %s in %s\n", class, elapsed(result.Duration))
		return nil
	}
	for _, f := range result.OutputFiles {
		fmt.Fprintf(deps.Stdout, "Rendered %s\n", f)
	}
	return nil
}

func ptr[T any](v T) *T {
	return &v
}
