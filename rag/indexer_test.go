package rag_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/fwojciec/animgen"
	"github.com/fwojciec/animgen/mock"
	"github.com/fwojciec/animgen/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageSource(calls *int, pages ...*animgen.Page) *mock.PageSource {
	return &mock.PageSource{
		PagesFn: func(ctx context.Context) (*animgen.PageSet, error) {
			*calls++
			return &animgen.PageSet{Pages: pages, Skipped: []string{"empty.html"}}, nil
		},
	}
}

func smallSplitter() *animgen.Splitter {
	return &animgen.Splitter{ChunkSize: 30, ChunkOverlap: 0, Separators: []string{"\n\n", "\n", " ", ""}}
}

func TestIndexer_Build(t *testing.T) {
	t.Parallel()

	pages := []*animgen.Page{
		{Source: "a.html", Text: "Circle draws a circle.\n\nSquare draws a square."},
		{Source: "b.html", Text: "Circle draws a circle."},
	}

	t.Run("extracts, caches and embeds on first build", func(t *testing.T) {
		t.Parallel()

		extracts := 0
		cache := &memCache{}
		index := &memIndex{}
		emb := &countingEmbedder{}

		ix := &rag.Indexer{
			Pages:    pageSource(&extracts, pages...),
			Cache:    cache.mock(),
			Splitter: smallSplitter(),
			Embedder: emb.mock(),
			Index:    index.mock(),
		}

		result, err := ix.Build(context.Background(), rag.BuildOptions{})

		require.NoError(t, err)
		assert.Equal(t, 1, extracts)
		assert.Equal(t, 2, result.Pages)
		assert.Equal(t, 1, result.Skipped)
		assert.Equal(t, 3, result.Chunks)
		assert.Equal(t, 1, result.Duplicates)
		assert.Equal(t, 0, result.Reused)
		assert.Equal(t, 2, result.Embedded)
		assert.Equal(t, 2, result.Dim)

		assert.Equal(t, 1, cache.pageSaves)
		assert.Equal(t, 1, cache.chunkSaves)
		assert.Len(t, index.chunks, 2)
		assert.Equal(t, &animgen.IndexMeta{ModelID: "test:embed", Dim: 2}, index.meta)
	})

	t.Run("reuses cached pages and stored embeddings", func(t *testing.T) {
		t.Parallel()

		extracts := 0
		cache := &memCache{}
		index := &memIndex{}
		emb := &countingEmbedder{}

		ix := &rag.Indexer{
			Pages:    pageSource(&extracts, pages...),
			Cache:    cache.mock(),
			Splitter: smallSplitter(),
			Embedder: emb.mock(),
			Index:    index.mock(),
		}

		_, err := ix.Build(context.Background(), rag.BuildOptions{})
		require.NoError(t, err)

		result, err := ix.Build(context.Background(), rag.BuildOptions{})
		require.NoError(t, err)

		assert.Equal(t, 1, extracts)
		assert.Equal(t, 2, result.Reused)
		assert.Equal(t, 0, result.Embedded)
		assert.Equal(t, 2, emb.texts)
		assert.Equal(t, 2, index.replaced)
	})

	t.Run("re-embeds everything when the model changes", func(t *testing.T) {
		t.Parallel()

		extracts := 0
		index := seededIndex(t, "old:model", 0)
		emb := &countingEmbedder{}

		ix := &rag.Indexer{
			Pages:    pageSource(&extracts, pages...),
			Cache:    (&memCache{}).mock(),
			Splitter: smallSplitter(),
			Embedder: emb.mock(),
			Index:    index.mock(),
		}

		result, err := ix.Build(context.Background(), rag.BuildOptions{})

		require.NoError(t, err)
		assert.Equal(t, 0, result.Reused)
		assert.Equal(t, 2, result.Embedded)
		assert.Equal(t, "test:embed", index.meta.ModelID)
	})

	t.Run("force clears caches and index", func(t *testing.T) {
		t.Parallel()

		extracts := 0
		cache := &memCache{}
		index := &memIndex{}
		emb := &countingEmbedder{}

		ix := &rag.Indexer{
			Pages:    pageSource(&extracts, pages...),
			Cache:    cache.mock(),
			Splitter: smallSplitter(),
			Embedder: emb.mock(),
			Index:    index.mock(),
		}

		_, err := ix.Build(context.Background(), rag.BuildOptions{})
		require.NoError(t, err)

		result, err := ix.Build(context.Background(), rag.BuildOptions{Force: true})
		require.NoError(t, err)

		assert.Equal(t, 1, cache.clears)
		assert.Equal(t, 2, extracts)
		assert.Equal(t, 0, result.Reused)
		assert.Equal(t, 2, result.Embedded)
		assert.Equal(t, 4, emb.texts)
	})

	t.Run("ignores the chunk cache when pages are re-extracted", func(t *testing.T) {
		t.Parallel()

		extracts := 0
		stale := &animgen.Chunk{ID: "stale", Source: "old.html", Content: "stale text", Hash: animgen.ContentHash("stale text")}
		cache := &memCache{chunks: []*animgen.Chunk{stale}}
		index := &memIndex{}

		ix := &rag.Indexer{
			Pages:    pageSource(&extracts, pages...),
			Cache:    cache.mock(),
			Splitter: smallSplitter(),
			Embedder: (&countingEmbedder{}).mock(),
			Index:    index.mock(),
		}

		_, err := ix.Build(context.Background(), rag.BuildOptions{})

		require.NoError(t, err)
		for _, c := range index.chunks {
			assert.NotEqual(t, "stale", c.ID)
		}
		assert.Equal(t, 1, cache.chunkSaves)
	})

	t.Run("embeds in batches and reports progress", func(t *testing.T) {
		t.Parallel()

		var words []string
		for i := range 25 {
			words = append(words, strings.Repeat(string(rune('a'+i)), 15))
		}
		extracts := 0
		emb := &countingEmbedder{}

		var mu sync.Mutex
		var embedDone []int
		ix := &rag.Indexer{
			Pages:       pageSource(&extracts, &animgen.Page{Source: "p.html", Text: strings.Join(words, "\n\n")}),
			Cache:       (&memCache{}).mock(),
			Splitter:    smallSplitter(),
			Embedder:    emb.mock(),
			Index:       (&memIndex{}).mock(),
			BatchSize:   10,
			Concurrency: 2,
		}

		result, err := ix.Build(context.Background(), rag.BuildOptions{
			Progress: func(p rag.Progress) {
				if p.Phase == rag.PhaseEmbed && p.Done > 0 {
					mu.Lock()
					embedDone = append(embedDone, p.Done)
					mu.Unlock()
				}
			},
		})

		require.NoError(t, err)
		assert.Equal(t, 25, result.Embedded)
		assert.Equal(t, 3, emb.calls)
		assert.Len(t, embedDone, 3)
		assert.Contains(t, embedDone, 25)
	})

	t.Run("takes and releases the lock", func(t *testing.T) {
		t.Parallel()

		extracts := 0
		locked, released := 0, 0
		ix := &rag.Indexer{
			Pages:    pageSource(&extracts, pages...),
			Cache:    (&memCache{}).mock(),
			Splitter: smallSplitter(),
			Embedder: (&countingEmbedder{}).mock(),
			Index:    (&memIndex{}).mock(),
			Lock: func(ctx context.Context) (func(), error) {
				locked++
				return func() { released++ }, nil
			},
		}

		_, err := ix.Build(context.Background(), rag.BuildOptions{})

		require.NoError(t, err)
		assert.Equal(t, 1, locked)
		assert.Equal(t, 1, released)
	})

	t.Run("does not build when the lock is held", func(t *testing.T) {
		t.Parallel()

		extracts := 0
		ix := &rag.Indexer{
			Pages:    pageSource(&extracts, pages...),
			Cache:    (&memCache{}).mock(),
			Embedder: (&countingEmbedder{}).mock(),
			Index:    (&memIndex{}).mock(),
			Lock: func(ctx context.Context) (func(), error) {
				return nil, animgen.Errorf(animgen.ECONFLICT, "index is locked")
			},
		}

		_, err := ix.Build(context.Background(), rag.BuildOptions{})

		assert.Equal(t, animgen.ECONFLICT, animgen.ErrorCode(err))
		assert.Equal(t, 0, extracts)
	})

	t.Run("returns embedder errors without writing the index", func(t *testing.T) {
		t.Parallel()

		extracts := 0
		index := &memIndex{}
		emb := (&countingEmbedder{}).mock()
		emb.EmbedDocumentsFn = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("quota exceeded")
		}

		ix := &rag.Indexer{
			Pages:    pageSource(&extracts, pages...),
			Cache:    (&memCache{}).mock(),
			Splitter: smallSplitter(),
			Embedder: emb,
			Index:    index.mock(),
		}

		_, err := ix.Build(context.Background(), rag.BuildOptions{})

		require.EqualError(t, err, "quota exceeded")
		assert.Equal(t, 0, index.replaced)
	})

	t.Run("rejects a short embedder response", func(t *testing.T) {
		t.Parallel()

		extracts := 0
		emb := (&countingEmbedder{}).mock()
		emb.EmbedDocumentsFn = func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{1, 1}}, nil
		}

		ix := &rag.Indexer{
			Pages:    pageSource(&extracts, pages...),
			Cache:    (&memCache{}).mock(),
			Splitter: smallSplitter(),
			Embedder: emb,
			Index:    (&memIndex{}).mock(),
		}

		_, err := ix.Build(context.Background(), rag.BuildOptions{})

		assert.Equal(t, animgen.EINTERNAL, animgen.ErrorCode(err))
	})

	t.Run("returns page source errors", func(t *testing.T) {
		t.Parallel()

		ix := &rag.Indexer{
			Pages: &mock.PageSource{
				PagesFn: func(ctx context.Context) (*animgen.PageSet, error) {
					return nil, animgen.Errorf(animgen.ENOTFOUND, "docs directory not found")
				},
			},
			Cache:    (&memCache{}).mock(),
			Embedder: (&countingEmbedder{}).mock(),
			Index:    (&memIndex{}).mock(),
		}

		_, err := ix.Build(context.Background(), rag.BuildOptions{})

		assert.Equal(t, animgen.ENOTFOUND, animgen.ErrorCode(err))
	})
}
