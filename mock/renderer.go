package mock

import (
	"context"

	"github.com/fwojciec/animgen"
)

var _ animgen.Renderer = (*Renderer)(nil)

// Renderer is a mock implementation of animgen.Renderer.
type Renderer struct {
	RenderFn func(ctx context.Context, file, className string, opts animgen.RenderOptions) (*animgen.RenderResult, error)
}

func (r *Renderer) Render(ctx context.Context, file, className string, opts animgen.RenderOptions) (*animgen.RenderResult, error) {
	return r.RenderFn(ctx, file, className, opts)
}

var _ animgen.CodeWriter = (*CodeWriter)(nil)

// CodeWriter is a mock implementation of animgen.CodeWriter.
type CodeWriter struct {
	WriteCodeFn func(ctx context.Context, name, code string) (string, error)
}

func (w *CodeWriter) WriteCode(ctx context.Context, name, code string) (string, error) {
	return w.WriteCodeFn(ctx, name, code)
}
