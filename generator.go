package animgen

import "context"

// GenerateOptions tunes a single generation call.
// Nil sampling parameters leave the provider default in place.
type GenerateOptions struct {
	System          string
	Temperature     *float32
	TopP            *float32
	TopK            *float32
	MaxOutputTokens int32
}

// CodeOptions returns the sampling parameters used for code generation.
func CodeOptions() GenerateOptions {
	return GenerateOptions{
		Temperature:     ptr[float32](0.3),
		TopP:            ptr[float32](0.8),
		TopK:            ptr[float32](40),
		MaxOutputTokens: 4000,
	}
}

// Generator produces text from a prompt using a language model.
type Generator interface {
	// Generate returns the model's text response to prompt.
	// Returns EUNAVAILABLE when the provider is rate limiting or down,
	// so callers can retry.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// Model returns the model name used for generation.
	Model() string
}

func ptr[T any](v T) *T {
	return &v
}
