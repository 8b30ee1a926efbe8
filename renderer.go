package animgen

import (
	"context"
	"time"
)

// RenderOptions configures a render run.
type RenderOptions struct {
	// Quality is the renderer quality flag suffix: l, m, h, p or k.
	Quality string

	// Preview opens the result in a viewer when rendering finishes.
	Preview bool

	// ConfigFile is an optional renderer configuration file.
	ConfigFile string
}

// RenderResult describes a finished render.
type RenderResult struct {
	OutputFiles []string
	Stdout      string
	Stderr      string
	Duration    time.Duration
}

// Renderer runs a generated scene through the external animation renderer.
type Renderer interface {
	// Render renders the scene className defined in file.
	// Returns ENOTFOUND if file does not exist and EUNAVAILABLE on timeout.
	Render(ctx context.Context, file, className string, opts RenderOptions) (*RenderResult, error)
}

// CodeWriter saves generated scripts.
type CodeWriter interface {
	// WriteCode writes code under name and returns the written path.
	WriteCode(ctx context.Context, name, code string) (string, error)
}
