package gemini

import (
	"context"
	"strings"

	"github.com/fwojciec/animgen"
	"google.golang.org/genai"
)

// Ensure Generator implements animgen.Generator at compile time.
var _ animgen.Generator = (*Generator)(nil)

// Generator implements animgen.Generator using Google Gemini.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator creates a new Generator. An empty model selects DefaultModel.
func NewGenerator(client *genai.Client, model string) *Generator {
	if model == "" {
		model = DefaultModel
	}
	return &Generator{client: client, model: model}
}

// Model returns the model name.
func (g *Generator) Model() string {
	return g.model
}

// Generate sends prompt as a single user turn.
func (g *Generator) Generate(ctx context.Context, prompt string, opts animgen.GenerateOptions) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", animgen.Errorf(animgen.EINVALID, "prompt required")
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{
			Role:  genai.RoleUser,
			Parts: []*genai.Part{{Text: prompt}},
		}},
		BuildConfig(opts),
	)
	if err != nil {
		return "", wrapError(err)
	}
	if result == nil {
		return "", animgen.Errorf(animgen.EINTERNAL, "gemini returned nil result")
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", animgen.Errorf(animgen.EINTERNAL, "gemini returned an empty response")
	}
	return text, nil
}

// BuildConfig converts generation options to a GenerateContentConfig.
func BuildConfig(opts animgen.GenerateOptions) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		Temperature:     opts.Temperature,
		TopP:            opts.TopP,
		TopK:            opts.TopK,
		MaxOutputTokens: opts.MaxOutputTokens,
	}
	if opts.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: opts.System}},
		}
	}
	return config
}
