package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"slices"
	"strconv"
	"sync"

	"github.com/fwojciec/animgen"
	"github.com/viant/vec/search"
)

var _ animgen.ChunkIndex = (*ChunkIndex)(nil)

const (
	metaModelID = "model_id"
	metaDim     = "dim"

	// hashBatchSize bounds the number of bound parameters per query.
	hashBatchSize = 500
)

// ChunkIndex implements animgen.ChunkIndex on SQLite. Vectors are kept as
// BLOBs and searched exhaustively by cosine similarity. The decoded vectors
// are cached in memory after the first search and dropped on every write.
type ChunkIndex struct {
	db *DB

	mu     sync.Mutex
	loaded *loadedIndex
}

type loadedIndex struct {
	meta    *animgen.IndexMeta
	entries []indexEntry
}

type indexEntry struct {
	chunk     *animgen.Chunk
	vector    search.Float32s
	magnitude float32
}

// NewChunkIndex creates a new ChunkIndex.
func NewChunkIndex(db *DB) *ChunkIndex {
	return &ChunkIndex{db: db}
}

// ReplaceChunks swaps the index content for chunks in one transaction.
func (s *ChunkIndex) ReplaceChunks(ctx context.Context, meta *animgen.IndexMeta, chunks []*animgen.Chunk) error {
	if meta == nil || meta.ModelID == "" {
		return animgen.Errorf(animgen.EINVALID, "index model ID required")
	}
	if meta.Dim <= 0 {
		return animgen.Errorf(animgen.EINVALID, "index dimension must be positive")
	}
	for _, c := range chunks {
		if err := c.Validate(); err != nil {
			return err
		}
		if len(c.Embedding) != meta.Dim {
			return animgen.Errorf(animgen.EINVALID, "chunk %s has %d dimensions, index has %d", c.ID, len(c.Embedding), meta.Dim)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = nil

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO chunks (id, source, idx, content, hash, embedding)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range chunks {
		hash := c.Hash
		if hash == "" {
			hash = animgen.ContentHash(c.Content)
		}
		if _, err := stmt.ExecContext(ctx, c.ID, c.Source, c.Index, c.Content, hash, encodeEmbedding(c.Embedding)); err != nil {
			return err
		}
	}

	for key, value := range map[string]string{
		metaModelID: meta.ModelID,
		metaDim:     strconv.Itoa(meta.Dim),
	} {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO index_meta (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value
		`, key, value); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindEmbeddings returns stored embeddings keyed by content hash.
func (s *ChunkIndex) FindEmbeddings(ctx context.Context, hashes []string) (map[string][]float32, error) {
	out := make(map[string][]float32)
	for batch := range slices.Chunk(hashes, hashBatchSize) {
		args := make([]any, len(batch))
		for i, h := range batch {
			args[i] = h
		}

		rows, err := s.db.QueryContext(ctx,
			"SELECT hash, embedding FROM chunks WHERE hash IN ("+placeholders(len(batch))+")", args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var hash string
			var blob []byte
			if err := rows.Scan(&hash, &blob); err != nil {
				rows.Close()
				return nil, err
			}
			vec, err := decodeEmbedding(blob)
			if err != nil {
				rows.Close()
				return nil, err
			}
			out[hash] = vec
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return out, nil
}

// Search ranks every indexed chunk by cosine similarity to vector.
// A Limit of zero returns every chunk; a MinScore of zero applies no
// threshold.
func (s *ChunkIndex) Search(ctx context.Context, vector []float32, opts animgen.SearchOptions) ([]animgen.SearchResult, error) {
	idx, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(vector) != idx.meta.Dim {
		return nil, animgen.Errorf(animgen.ECONFLICT,
			"query has %d dimensions but the index was built with %d (model %s); rebuild the index",
			len(vector), idx.meta.Dim, idx.meta.ModelID)
	}

	query := search.Float32s(vector)
	qm := query.Magnitude()
	if qm == 0 {
		return nil, animgen.Errorf(animgen.EINVALID, "query vector has zero magnitude")
	}

	results := make([]animgen.SearchResult, 0, len(idx.entries))
	for _, e := range idx.entries {
		if e.magnitude == 0 {
			continue
		}
		score := dot(query, e.vector) / (qm * e.magnitude)
		if opts.MinScore != 0 && score < opts.MinScore {
			continue
		}
		results = append(results, animgen.SearchResult{Chunk: e.chunk, Score: score})
	}

	// Stable so that equal scores keep index order.
	slices.SortStableFunc(results, func(a, b animgen.SearchResult) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

func dot(a, b search.Float32s) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Meta returns the embedding space of the index.
func (s *ChunkIndex) Meta(ctx context.Context) (*animgen.IndexMeta, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM index_meta")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		values[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if values[metaModelID] == "" {
		return nil, animgen.Errorf(animgen.ENOTFOUND, "index is empty; run the index command first")
	}
	dim, err := strconv.Atoi(values[metaDim])
	if err != nil {
		return nil, animgen.Errorf(animgen.EINTERNAL, "corrupt index dimension %q", values[metaDim])
	}
	return &animgen.IndexMeta{ModelID: values[metaModelID], Dim: dim}, nil
}

// Count returns the number of indexed chunks.
func (s *ChunkIndex) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n)
	return n, err
}

// Reset removes every chunk and the index metadata.
func (s *ChunkIndex) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loaded = nil

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM index_meta"); err != nil {
		return err
	}
	return tx.Commit()
}

// load returns the cached vectors, reading them from the database on
// first use. Returns ENOTFOUND when nothing is indexed.
func (s *ChunkIndex) load(ctx context.Context) (*loadedIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded != nil {
		return s.loaded, nil
	}

	meta, err := s.Meta(ctx)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT id, source, idx, content, hash, embedding FROM chunks ORDER BY seq")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	idx := &loadedIndex{meta: meta}
	for rows.Next() {
		var c animgen.Chunk
		var blob []byte
		if err := rows.Scan(&c.ID, &c.Source, &c.Index, &c.Content, &c.Hash, &blob); err != nil {
			return nil, err
		}
		vec, err := decodeEmbedding(blob)
		if err != nil {
			return nil, err
		}
		if len(vec) != meta.Dim {
			return nil, animgen.Errorf(animgen.EINTERNAL, "chunk %s has %d dimensions, index has %d", c.ID, len(vec), meta.Dim)
		}
		c.Embedding = vec
		v := search.Float32s(vec)
		idx.entries = append(idx.entries, indexEntry{chunk: &c, vector: v, magnitude: v.Magnitude()})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(idx.entries) == 0 {
		return nil, animgen.Errorf(animgen.ENOTFOUND, "index is empty; run the index command first")
	}

	s.loaded = idx
	return idx, nil
}

// isNoRows reports whether err is sql.ErrNoRows.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
