package animgen

import (
	"context"
	"time"
)

// Generation records one run of the question-to-script pipeline.
type Generation struct {
	ID        string `json:"id"`
	Query     string `json:"query"`
	Model     string `json:"model"`
	FilePath  string `json:"filePath"`
	ClassName string `json:"className"`

	// Elaborated is set when the prompt was expanded by the model first.
	Elaborated bool `json:"elaborated"`

	// Fallback is set when code generation failed and the template scene
	// was written instead.
	Fallback bool `json:"fallback"`

	Rendered    bool     `json:"rendered"`
	RenderError string   `json:"renderError,omitempty"`
	OutputFiles []string `json:"outputFiles,omitempty"`

	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"createdAt"`
}

// Validate returns an error if the generation contains invalid fields.
func (g *Generation) Validate() error {
	if g.Query == "" {
		return Errorf(EINVALID, "generation query required")
	}
	if g.FilePath == "" {
		return Errorf(EINVALID, "generation file path required")
	}
	if g.Duration < 0 {
		return Errorf(EINVALID, "generation duration must not be negative")
	}
	return nil
}

// Succeeded reports whether the model produced the script and, when a
// render was attempted, the render worked.
func (g *Generation) Succeeded() bool {
	return !g.Fallback && g.RenderError == ""
}

// GenerationService represents a service for recording generations.
type GenerationService interface {
	// CreateGeneration records a generation, assigning its ID and
	// creation time.
	CreateGeneration(ctx context.Context, g *Generation) error

	// FindGenerationByID retrieves a generation by ID.
	// Returns ENOTFOUND if generation does not exist.
	FindGenerationByID(ctx context.Context, id string) (*Generation, error)

	// FindGenerations retrieves generations matching the filter, newest first.
	FindGenerations(ctx context.Context, filter GenerationFilter) ([]*Generation, error)

	// UpdateGeneration records the outcome of a later render.
	// Returns ENOTFOUND if generation does not exist.
	UpdateGeneration(ctx context.Context, id string, upd GenerationUpdate) (*Generation, error)

	// Stats summarizes all recorded generations, listing up to popular
	// of the most frequent queries.
	Stats(ctx context.Context, popular int) (*GenerationStats, error)
}

// GenerationFilter represents a filter for FindGenerations.
type GenerationFilter struct {
	ID    *string `json:"id"`
	Query *string `json:"query"` // case-insensitive substring match

	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// GenerationUpdate represents fields that can be updated after creation.
type GenerationUpdate struct {
	Rendered    *bool    `json:"rendered"`
	RenderError *string  `json:"renderError"`
	OutputFiles []string `json:"outputFiles"`
}

// GenerationStats summarizes recorded generations.
type GenerationStats struct {
	Total           int           `json:"total"`
	Succeeded       int           `json:"succeeded"`
	Fallbacks       int           `json:"fallbacks"`
	Rendered        int           `json:"rendered"`
	SuccessRate     float64       `json:"successRate"`
	AverageDuration time.Duration `json:"averageDuration"`
	PopularQueries  []string      `json:"popularQueries"`
}
