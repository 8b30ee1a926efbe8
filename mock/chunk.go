package mock

import (
	"context"

	"github.com/fwojciec/animgen"
)

var _ animgen.ChunkIndex = (*ChunkIndex)(nil)

// ChunkIndex is a mock implementation of animgen.ChunkIndex.
type ChunkIndex struct {
	ReplaceChunksFn  func(ctx context.Context, meta *animgen.IndexMeta, chunks []*animgen.Chunk) error
	FindEmbeddingsFn func(ctx context.Context, hashes []string) (map[string][]float32, error)
	SearchFn         func(ctx context.Context, vector []float32, opts animgen.SearchOptions) ([]animgen.SearchResult, error)
	MetaFn           func(ctx context.Context) (*animgen.IndexMeta, error)
	CountFn          func(ctx context.Context) (int, error)
	ResetFn          func(ctx context.Context) error
}

func (i *ChunkIndex) ReplaceChunks(ctx context.Context, meta *animgen.IndexMeta, chunks []*animgen.Chunk) error {
	return i.ReplaceChunksFn(ctx, meta, chunks)
}

func (i *ChunkIndex) FindEmbeddings(ctx context.Context, hashes []string) (map[string][]float32, error) {
	return i.FindEmbeddingsFn(ctx, hashes)
}

func (i *ChunkIndex) Search(ctx context.Context, vector []float32, opts animgen.SearchOptions) ([]animgen.SearchResult, error) {
	return i.SearchFn(ctx, vector, opts)
}

func (i *ChunkIndex) Meta(ctx context.Context) (*animgen.IndexMeta, error) {
	return i.MetaFn(ctx)
}

func (i *ChunkIndex) Count(ctx context.Context) (int, error) {
	return i.CountFn(ctx)
}

func (i *ChunkIndex) Reset(ctx context.Context) error {
	return i.ResetFn(ctx)
}

var _ animgen.Retriever = (*Retriever)(nil)

// Retriever is a mock implementation of animgen.Retriever.
type Retriever struct {
	RetrieveFn func(ctx context.Context, query string, opts animgen.SearchOptions) ([]animgen.SearchResult, error)
}

func (r *Retriever) Retrieve(ctx context.Context, query string, opts animgen.SearchOptions) ([]animgen.SearchResult, error) {
	return r.RetrieveFn(ctx, query, opts)
}
