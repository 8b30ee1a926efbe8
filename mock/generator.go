package mock

import (
	"context"

	"github.com/fwojciec/animgen"
)

var _ animgen.Generator = (*Generator)(nil)

// Generator is a mock implementation of animgen.Generator.
type Generator struct {
	GenerateFn func(ctx context.Context, prompt string, opts animgen.GenerateOptions) (string, error)
	ModelFn    func() string
}

func (g *Generator) Generate(ctx context.Context, prompt string, opts animgen.GenerateOptions) (string, error) {
	return g.GenerateFn(ctx, prompt, opts)
}

func (g *Generator) Model() string {
	return g.ModelFn()
}
