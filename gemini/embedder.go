package gemini

import (
	"context"
	"slices"

	"github.com/fwojciec/animgen"
	"google.golang.org/genai"
)

var _ animgen.Embedder = (*Embedder)(nil)

// MaxBatchSize is the largest number of texts the API embeds per request.
const MaxBatchSize = 100

// Task types distinguishing stored passages from search queries.
const (
	taskDocument = "RETRIEVAL_DOCUMENT"
	taskQuery    = "RETRIEVAL_QUERY"
)

// Embedder implements animgen.Embedder using Gemini embedding models.
type Embedder struct {
	client *genai.Client
	model  string

	// BatchSize caps texts per request. Zero means MaxBatchSize.
	BatchSize int
}

// NewEmbedder creates a new Embedder. An empty model selects
// DefaultEmbeddingModel.
func NewEmbedder(client *genai.Client, model string) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{client: client, model: model}
}

// ModelID returns "gemini:<model>".
func (e *Embedder) ModelID() string {
	return "gemini:" + e.model
}

// EmbedDocuments embeds texts in batches, preserving order.
func (e *Embedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	size := e.BatchSize
	if size <= 0 || size > MaxBatchSize {
		size = MaxBatchSize
	}

	out := make([][]float32, 0, len(texts))
	for batch := range slices.Chunk(texts, size) {
		vecs, err := e.embed(ctx, batch, taskDocument)
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
	vecs, err := e.embed(ctx, []string{text}, taskQuery)
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (e *Embedder) embed(ctx context.Context, texts []string, task string) ([][]float32, error) {
	contents := make([]*genai.Content, len(texts))
	for i, t := range texts {
		contents[i] = genai.NewContentFromText(t, genai.RoleUser)
	}

	resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		TaskType: task,
	})
	if err != nil {
		return nil, wrapError(err)
	}
	if resp == nil || len(resp.Embeddings) != len(texts) {
		got := 0
		if resp != nil {
			got = len(resp.Embeddings)
		}
		return nil, animgen.Errorf(animgen.EINTERNAL, "gemini returned %d embeddings for %d texts", got, len(texts))
	}

	vecs := make([][]float32, len(texts))
	for i, emb := range resp.Embeddings {
		if emb == nil || len(emb.Values) == 0 {
			return nil, animgen.Errorf(animgen.EINTERNAL, "gemini returned an empty embedding at position %d", i)
		}
		vecs[i] = emb.Values
	}
	return vecs, nil
}
