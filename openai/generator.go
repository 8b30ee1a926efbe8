package openai

import (
	"context"
	"strings"

	"github.com/fwojciec/animgen"
)

var _ animgen.Generator = (*Generator)(nil)

// Generator implements animgen.Generator with the chat completions API.
type Generator struct {
	client *Client
	model  string
}

// NewGenerator creates a Generator for model. An empty model selects
// DefaultModel.
func NewGenerator(client *Client, model string) *Generator {
	if model == "" {
		model = DefaultModel
	}
	return &Generator{client: client, model: model}
}

// Model returns the model name.
func (g *Generator) Model() string {
	return g.model
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model,omitempty"`
	Messages    []message `json:"messages"`
	Temperature *float32  `json:"temperature,omitempty"`
	TopP        *float32  `json:"top_p,omitempty"`
	MaxTokens   int32     `json:"max_tokens,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate sends prompt as a user message. TopK is not part of the chat
// completions API and is ignored.
func (g *Generator) Generate(ctx context.Context, prompt string, opts animgen.GenerateOptions) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", animgen.Errorf(animgen.EINVALID, "prompt required")
	}

	req := chatRequest{
		Model:       g.model,
		Temperature: opts.Temperature,
		TopP:        opts.TopP,
		MaxTokens:   opts.MaxOutputTokens,
	}
	if opts.System != "" {
		req.Messages = append(req.Messages, message{Role: "system", Content: opts.System})
	}
	req.Messages = append(req.Messages, message{Role: "user", Content: prompt})

	var resp chatResponse
	if err := g.client.post(ctx, "/chat/completions", req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", animgen.Errorf(animgen.EINTERNAL, "empty response from %s", g.model)
	}
	return resp.Choices[0].Message.Content, nil
}
