package animgen

import (
	"context"
	"fmt"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Chunk represents a section of a page sized for embedding and retrieval.
type Chunk struct {
	ID        string    `json:"id"`
	Source    string    `json:"source"`
	Index     int       `json:"index"` // position within the source page
	Content   string    `json:"text"`
	Hash      string    `json:"hash"` // content hash, used to reuse embeddings
	Embedding []float32 `json:"embedding,omitempty"`
}

// Validate returns an error if the chunk contains invalid fields.
func (c *Chunk) Validate() error {
	if c.ID == "" {
		return Errorf(EINVALID, "chunk ID required")
	}
	if c.Content == "" {
		return Errorf(EINVALID, "chunk content required")
	}
	if len(c.Embedding) == 0 {
		return Errorf(EINVALID, "chunk %s has no embedding", c.ID)
	}
	return nil
}

// ContentHash returns the hash used to detect identical chunk text.
func ContentHash(content string) string {
	return fmt.Sprintf("%x", xxhash.Sum64String(content))
}

// ChunkID derives a stable chunk ID from its position and content.
func ChunkID(source string, index int, hash string) string {
	return ContentHash(source + "\x00" + strconv.Itoa(index) + "\x00" + hash)
}

// IndexMeta describes the embedding space an index was built with.
type IndexMeta struct {
	ModelID string `json:"modelId"`
	Dim     int    `json:"dim"`
}

// ChunkIndex persists embedded chunks and answers nearest-neighbour queries.
type ChunkIndex interface {
	// ReplaceChunks swaps the whole index content for chunks.
	// Every chunk must carry an embedding of meta.Dim values.
	ReplaceChunks(ctx context.Context, meta *IndexMeta, chunks []*Chunk) error

	// FindEmbeddings returns stored embeddings keyed by content hash.
	// Hashes that are not indexed are absent from the result.
	FindEmbeddings(ctx context.Context, hashes []string) (map[string][]float32, error)

	// Search returns the chunks nearest to vector, most similar first.
	// Returns ECONFLICT if the vector does not match the index dimension.
	Search(ctx context.Context, vector []float32, opts SearchOptions) ([]SearchResult, error)

	// Meta returns the embedding space of the index.
	// Returns ENOTFOUND if nothing has been indexed yet.
	Meta(ctx context.Context) (*IndexMeta, error)

	// Count returns the number of indexed chunks.
	Count(ctx context.Context) (int, error)

	// Reset removes every chunk and the index metadata.
	Reset(ctx context.Context) error
}

// SearchOptions configures search behavior.
type SearchOptions struct {
	// Maximum number of results to return
	Limit int `json:"limit,omitempty"`

	// Minimum similarity score (-1..1); zero means no threshold
	MinScore float32 `json:"minScore,omitempty"`
}

// SearchResult represents a search match.
type SearchResult struct {
	Chunk *Chunk  `json:"chunk"`
	Score float32 `json:"score"`
}

// Retriever finds documentation passages relevant to a question.
type Retriever interface {
	// Retrieve embeds the query and returns the nearest chunks.
	// Returns EINVALID for an empty query and ENOTFOUND for an empty index.
	Retrieve(ctx context.Context, query string, opts SearchOptions) ([]SearchResult, error)
}
