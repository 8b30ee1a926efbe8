package openai

import (
	"context"
	"slices"

	"github.com/fwojciec/animgen"
)

var _ animgen.Embedder = (*Embedder)(nil)

// DefaultBatchSize is the number of texts sent per embeddings request.
const DefaultBatchSize = 100

// Embedder implements animgen.Embedder with the embeddings API.
type Embedder struct {
	client *Client
	model  string

	BatchSize int
}

// NewEmbedder creates an Embedder for model. An empty model selects
// DefaultEmbeddingModel.
func NewEmbedder(client *Client, model string) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{client: client, model: model, BatchSize: DefaultBatchSize}
}

// ModelID returns "openai:<model>".
func (e *Embedder) ModelID() string {
	return "openai:" + e.model
}

type embeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
}

// EmbedDocuments embeds texts in batches, preserving order.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	size := e.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	out := make([][]float32, 0, len(texts))
	for batch := range slices.Chunk(texts, size) {
		vecs, err := e.embed(ctx, batch)
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

// EmbedQuery embeds a single search query.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, animgen.Errorf(animgen.EINVALID, "query text required")
	}
	vecs, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *Embedder) embed(ctx context.Context, texts []string) ([][]float32, error) {
	if e.model == "" {
		return nil, animgen.Errorf(animgen.EINVALID, "embedding model is not configured")
	}

	var resp embeddingResponse
	if err := e.client.post(ctx, "/embeddings", embeddingRequest{Model: e.model, Input: texts}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Data) != len(texts) {
		return nil, animgen.Errorf(animgen.EINTERNAL, "got %d embeddings for %d texts", len(resp.Data), len(texts))
	}

	// Servers may return entries out of order; place them by index.
	vecs := make([][]float32, len(texts))
	for _, d := range resp.Data {
		if d.Index < 0 || d.Index >= len(texts) || vecs[d.Index] != nil {
			return nil, animgen.Errorf(animgen.EINTERNAL, "invalid embedding index %d", d.Index)
		}
		if len(d.Embedding) == 0 {
			return nil, animgen.Errorf(animgen.EINTERNAL, "empty embedding at index %d", d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		vecs[d.Index] = vec
	}
	return vecs, nil
}
