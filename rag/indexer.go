package rag

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fwojciec/animgen"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

// Indexer defaults.
const (
	DefaultBatchSize   = 100
	DefaultConcurrency = 4
)

// Index build phases reported through BuildOptions.Progress.
const (
	PhasePages  = "pages"
	PhaseChunks = "chunks"
	PhaseEmbed  = "embed"
	PhaseStore  = "store"
)

// Progress reports how far an index build has come.
type Progress struct {
	Phase string
	Done  int
	Total int
}

// BuildOptions configures a single index build.
type BuildOptions struct {
	// Force discards the caches and the index, re-embedding every chunk.
	Force bool

	// Progress, if set, is called as phases advance. Calls are serialized.
	Progress func(Progress)
}

// IndexResult summarizes an index build.
type IndexResult struct {
	Pages      int
	Skipped    int // pages that yielded no text
	Chunks     int // chunks after splitting, before deduplication
	Duplicates int // chunks dropped because their text repeats
	Reused     int // chunks whose stored embedding was kept
	Embedded   int // chunks sent to the embedder
	Dim        int
	Duration   time.Duration
}

// Indexer turns the documentation directory into a searchable chunk index.
type Indexer struct {
	Pages    animgen.PageSource
	Cache    animgen.Cache
	Splitter *animgen.Splitter
	Embedder animgen.Embedder
	Index    animgen.ChunkIndex

	// Lock, if set, guards the build against concurrent runs.
	Lock func(ctx context.Context) (release func(), err error)

	// BatchSize is the number of chunks per embedding call.
	BatchSize int

	// Concurrency is the number of embedding calls in flight.
	Concurrency int

	// Limiter, if set, paces embedding calls.
	Limiter *rate.Limiter

	Logger *slog.Logger
}

// Build loads pages and chunks from the cache (or produces and caches
// them), reuses stored embeddings for unchanged chunk text, embeds the rest
// and replaces the index content.
func (ix *Indexer) Build(ctx context.Context, opts BuildOptions) (*IndexResult, error) {
	begin := time.Now()
	logger := ix.logger()
	progress := serialize(opts.Progress)

	if ix.Lock != nil {
		release, err := ix.Lock(ctx)
		if err != nil {
			return nil, err
		}
		defer release()
	}

	if opts.Force {
		if err := ix.Cache.Clear(); err != nil {
			return nil, err
		}
		if err := ix.Index.Reset(ctx); err != nil {
			return nil, err
		}
	}

	result := &IndexResult{}

	progress(Progress{Phase: PhasePages})
	pages, fresh, err := ix.loadPages(ctx, result)
	if err != nil {
		return nil, err
	}
	result.Pages = len(pages)
	progress(Progress{Phase: PhasePages, Done: len(pages), Total: len(pages)})

	chunks, err := ix.loadChunks(pages, fresh)
	if err != nil {
		return nil, err
	}
	result.Chunks = len(chunks)
	progress(Progress{Phase: PhaseChunks, Done: len(chunks), Total: len(chunks)})

	chunks = dedupe(chunks)
	result.Duplicates = result.Chunks - len(chunks)
	if len(chunks) == 0 {
		return nil, animgen.Errorf(animgen.ENOTFOUND, "no chunks to index")
	}

	reused, err := ix.reuseEmbeddings(ctx, chunks)
	if err != nil {
		return nil, err
	}
	result.Reused = reused

	embedded, err := ix.embedMissing(ctx, chunks, progress)
	if err != nil {
		return nil, err
	}
	result.Embedded = embedded

	dim := len(chunks[0].Embedding)
	for _, c := range chunks {
		if len(c.Embedding) != dim {
			return nil, animgen.Errorf(animgen.EINTERNAL,
				"embedder returned %d dimensions for chunk %s, expected %d", len(c.Embedding), c.ID, dim)
		}
	}
	result.Dim = dim

	progress(Progress{Phase: PhaseStore, Total: len(chunks)})
	meta := &animgen.IndexMeta{ModelID: ix.Embedder.ModelID(), Dim: dim}
	if err := ix.Index.ReplaceChunks(ctx, meta, chunks); err != nil {
		return nil, err
	}
	progress(Progress{Phase: PhaseStore, Done: len(chunks), Total: len(chunks)})

	result.Duration = time.Since(begin)
	logger.Info("index built",
		"pages", result.Pages,
		"chunks", len(chunks),
		"duplicates", result.Duplicates,
		"reused", result.Reused,
		"embedded", result.Embedded,
		"dim", dim,
		"duration", result.Duration,
	)
	return result, nil
}

// loadPages reports fresh when the pages were extracted rather than read
// from the cache.
func (ix *Indexer) loadPages(ctx context.Context, result *IndexResult) (pages []*animgen.Page, fresh bool, err error) {
	pages, err = ix.Cache.LoadPages()
	if err == nil && len(pages) > 0 {
		ix.logger().Debug("pages loaded from cache", "count", len(pages))
		return pages, false, nil
	}
	if err != nil && animgen.ErrorCode(err) != animgen.ENOTFOUND {
		ix.logger().Warn("ignoring unreadable page cache", "err", err)
	}

	set, err := ix.Pages.Pages(ctx)
	if err != nil {
		return nil, false, err
	}
	result.Skipped = len(set.Skipped)
	if len(set.Skipped) > 0 {
		ix.logger().Warn("skipped pages without text", "count", len(set.Skipped))
	}
	if err := ix.Cache.SavePages(set.Pages); err != nil {
		return nil, false, err
	}
	return set.Pages, true, nil
}

// loadChunks ignores the chunk cache when the pages were re-extracted.
func (ix *Indexer) loadChunks(pages []*animgen.Page, fresh bool) ([]*animgen.Chunk, error) {
	if !fresh {
		chunks, err := ix.Cache.LoadChunks()
		if err == nil && len(chunks) > 0 {
			ix.logger().Debug("chunks loaded from cache", "count", len(chunks))
			return chunks, nil
		}
		if err != nil && animgen.ErrorCode(err) != animgen.ENOTFOUND {
			ix.logger().Warn("ignoring unreadable chunk cache", "err", err)
		}
	}

	splitter := ix.Splitter
	if splitter == nil {
		splitter = animgen.NewSplitter()
	}
	chunks, err := splitter.SplitPages(pages)
	if err != nil {
		return nil, err
	}
	if err := ix.Cache.SaveChunks(chunks); err != nil {
		return nil, err
	}
	return chunks, nil
}

// dedupe keeps the first chunk for each distinct text.
func dedupe(chunks []*animgen.Chunk) []*animgen.Chunk {
	seen := make(map[string]struct{}, len(chunks))
	out := make([]*animgen.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if c.Hash == "" {
			c.Hash = animgen.ContentHash(c.Content)
		}
		if _, ok := seen[c.Hash]; ok {
			continue
		}
		seen[c.Hash] = struct{}{}
		out = append(out, c)
	}
	return out
}

// reuseEmbeddings fills in embeddings already stored for the same text,
// provided the index was built with the current embedding model.
func (ix *Indexer) reuseEmbeddings(ctx context.Context, chunks []*animgen.Chunk) (int, error) {
	meta, err := ix.Index.Meta(ctx)
	if animgen.ErrorCode(err) == animgen.ENOTFOUND {
		return 0, nil
	} else if err != nil {
		return 0, err
	}
	if meta.ModelID != ix.Embedder.ModelID() {
		ix.logger().Info("embedding model changed, re-embedding everything",
			"indexed", meta.ModelID, "current", ix.Embedder.ModelID())
		return 0, nil
	}

	hashes := make([]string, len(chunks))
	for i, c := range chunks {
		hashes[i] = c.Hash
	}
	stored, err := ix.Index.FindEmbeddings(ctx, hashes)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, c := range chunks {
		if vec, ok := stored[c.Hash]; ok && len(vec) == meta.Dim {
			c.Embedding = vec
			n++
		}
	}
	return n, nil
}

// embedMissing embeds chunks without an embedding in concurrent batches.
// Each batch writes only its own chunks.
func (ix *Indexer) embedMissing(ctx context.Context, chunks []*animgen.Chunk, progress func(Progress)) (int, error) {
	var missing []*animgen.Chunk
	for _, c := range chunks {
		if len(c.Embedding) == 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return 0, nil
	}

	size := ix.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	concurrency := ix.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	var mu sync.Mutex
	done := 0
	progress(Progress{Phase: PhaseEmbed, Total: len(missing)})

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for start := 0; start < len(missing); start += size {
		batch := missing[start:min(start+size, len(missing))]
		g.Go(func() error {
			if ix.Limiter != nil {
				if err := ix.Limiter.Wait(ctx); err != nil {
					return err
				}
			}

			texts := make([]string, len(batch))
			for i, c := range batch {
				texts[i] = c.Content
			}
			vecs, err := ix.Embedder.EmbedDocuments(ctx, texts)
			if err != nil {
				return err
			}
			if len(vecs) != len(batch) {
				return animgen.Errorf(animgen.EINTERNAL, "embedder returned %d vectors for %d texts", len(vecs), len(batch))
			}
			for i, c := range batch {
				c.Embedding = vecs[i]
			}

			mu.Lock()
			done += len(batch)
			n := done
			mu.Unlock()
			progress(Progress{Phase: PhaseEmbed, Done: n, Total: len(missing)})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(missing), nil
}

func (ix *Indexer) logger() *slog.Logger {
	if ix.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return ix.Logger
}

// serialize makes fn safe to call from several goroutines; nil becomes a
// no-op.
func serialize(fn func(Progress)) func(Progress) {
	if fn == nil {
		return func(Progress) {}
	}
	var mu sync.Mutex
	return func(p Progress) {
		mu.Lock()
		defer mu.Unlock()
		fn(p)
	}
}
