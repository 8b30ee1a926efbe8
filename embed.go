package animgen

import "context"

// Embedder turns text into vectors.
type Embedder interface {
	// EmbedDocuments embeds passages for storage in the index.
	// The result has one vector per input text, in order.
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery embeds a search query.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)

	// ModelID identifies the embedding space, e.g. "gemini:text-embedding-004".
	// Vectors from different model IDs must not be mixed in one index.
	ModelID() string
}
