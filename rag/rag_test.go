package rag_test

import (
	"context"
	"slices"
	"sync"

	"github.com/fwojciec/animgen"
	"github.com/fwojciec/animgen/mock"
)

// memIndex backs a mock.ChunkIndex with a slice. Search returns chunks in
// stored order with a fixed score.
type memIndex struct {
	mu       sync.Mutex
	meta     *animgen.IndexMeta
	chunks   []*animgen.Chunk
	replaced int
}

func (m *memIndex) mock() *mock.ChunkIndex {
	return &mock.ChunkIndex{
		ReplaceChunksFn: func(ctx context.Context, meta *animgen.IndexMeta, chunks []*animgen.Chunk) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.meta = meta
			m.chunks = slices.Clone(chunks)
			m.replaced++
			return nil
		},
		FindEmbeddingsFn: func(ctx context.Context, hashes []string) (map[string][]float32, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			out := make(map[string][]float32)
			for _, c := range m.chunks {
				if slices.Contains(hashes, c.Hash) {
					out[c.Hash] = c.Embedding
				}
			}
			return out, nil
		},
		SearchFn: func(ctx context.Context, vector []float32, opts animgen.SearchOptions) ([]animgen.SearchResult, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			var out []animgen.SearchResult
			for _, c := range m.chunks {
				out = append(out, animgen.SearchResult{Chunk: c, Score: 0.9})
			}
			if opts.Limit > 0 && len(out) > opts.Limit {
				out = out[:opts.Limit]
			}
			return out, nil
		},
		MetaFn: func(ctx context.Context) (*animgen.IndexMeta, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			if m.meta == nil {
				return nil, animgen.Errorf(animgen.ENOTFOUND, "index is empty")
			}
			return m.meta, nil
		},
		CountFn: func(ctx context.Context) (int, error) {
			m.mu.Lock()
			defer m.mu.Unlock()
			return len(m.chunks), nil
		},
		ResetFn: func(ctx context.Context) error {
			m.mu.Lock()
			defer m.mu.Unlock()
			m.meta, m.chunks = nil, nil
			return nil
		},
	}
}

// memCache backs a mock.Cache with fields.
type memCache struct {
	pages  []*animgen.Page
	chunks []*animgen.Chunk

	pageSaves, chunkSaves, clears int
}

func (m *memCache) mock() *mock.Cache {
	return &mock.Cache{
		LoadPagesFn: func() ([]*animgen.Page, error) {
			if m.pages == nil {
				return nil, animgen.Errorf(animgen.ENOTFOUND, "no page cache")
			}
			return m.pages, nil
		},
		SavePagesFn: func(pages []*animgen.Page) error {
			m.pages = pages
			m.pageSaves++
			return nil
		},
		LoadChunksFn: func() ([]*animgen.Chunk, error) {
			if m.chunks == nil {
				return nil, animgen.Errorf(animgen.ENOTFOUND, "no chunk cache")
			}
			// Cached chunks come back without embeddings.
			out := make([]*animgen.Chunk, len(m.chunks))
			for i, c := range m.chunks {
				cp := *c
				cp.Embedding = nil
				out[i] = &cp
			}
			return out, nil
		},
		SaveChunksFn: func(chunks []*animgen.Chunk) error {
			m.chunks = chunks
			m.chunkSaves++
			return nil
		},
		ClearFn: func() error {
			m.pages, m.chunks = nil, nil
			m.clears++
			return nil
		},
	}
}

// countingEmbedder embeds each text as [len(text), 1] and counts texts.
type countingEmbedder struct {
	mu    sync.Mutex
	texts int
	calls int
	model string
}

func (e *countingEmbedder) mock() *mock.Embedder {
	model := e.model
	if model == "" {
		model = "test:embed"
	}
	return &mock.Embedder{
		EmbedDocumentsFn: func(ctx context.Context, texts []string) ([][]float32, error) {
			e.mu.Lock()
			e.texts += len(texts)
			e.calls++
			e.mu.Unlock()
			out := make([][]float32, len(texts))
			for i, t := range texts {
				out[i] = []float32{float32(len(t)), 1}
			}
			return out, nil
		},
		EmbedQueryFn: func(ctx context.Context, text string) ([]float32, error) {
			return []float32{float32(len(text)), 1}, nil
		},
		ModelIDFn: func() string { return model },
	}
}
