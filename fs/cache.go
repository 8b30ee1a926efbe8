package fs

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/fwojciec/animgen"
)

// Cache file names inside the cache directory.
const (
	PagesFile  = "pages.jsonl"
	ChunksFile = "chunks.jsonl"
	LockFile   = "index.lock"
)

var _ animgen.Cache = (*Cache)(nil)

// Cache stores the extracted pages and split chunks between index builds.
// Both files are write-once: they are rebuilt only when missing or when a
// build is forced.
type Cache struct {
	Dir string
}

// NewCache returns a Cache rooted at dir.
func NewCache(dir string) *Cache {
	return &Cache{Dir: dir}
}

// PagesPath returns the path of the page cache.
func (c *Cache) PagesPath() string { return filepath.Join(c.Dir, PagesFile) }

// ChunksPath returns the path of the chunk cache.
func (c *Cache) ChunksPath() string { return filepath.Join(c.Dir, ChunksFile) }

// LockPath returns the path of the index build lock.
func (c *Cache) LockPath() string { return filepath.Join(c.Dir, LockFile) }

// LoadPages reads cached pages. Returns ENOTFOUND if there is no cache.
func (c *Cache) LoadPages() ([]*animgen.Page, error) {
	return ReadJSONL[*animgen.Page](c.PagesPath())
}

// SavePages writes the page cache.
func (c *Cache) SavePages(pages []*animgen.Page) error {
	return WriteJSONL(c.PagesPath(), pages)
}

// chunkRecord is the on-disk form of a chunk.
type chunkRecord struct {
	ID       string        `json:"id"`
	Text     string        `json:"text"`
	Metadata chunkMetadata `json:"metadata"`
}

type chunkMetadata struct {
	Source string `json:"source"`
	Index  int    `json:"index"`
	Hash   string `json:"hash"`
}

// LoadChunks reads cached chunks. Returns ENOTFOUND if there is no cache.
func (c *Cache) LoadChunks() ([]*animgen.Chunk, error) {
	records, err := ReadJSONL[chunkRecord](c.ChunksPath())
	if err != nil {
		return nil, err
	}

	chunks := make([]*animgen.Chunk, 0, len(records))
	for _, r := range records {
		hash := r.Metadata.Hash
		if hash == "" {
			hash = animgen.ContentHash(r.Text)
		}
		id := r.ID
		if id == "" {
			id = animgen.ChunkID(r.Metadata.Source, r.Metadata.Index, hash)
		}
		chunks = append(chunks, &animgen.Chunk{
			ID:      id,
			Source:  r.Metadata.Source,
			Index:   r.Metadata.Index,
			Content: r.Text,
			Hash:    hash,
		})
	}
	return chunks, nil
}

// SaveChunks writes the chunk cache. Embeddings are not cached here;
// they live in the index.
func (c *Cache) SaveChunks(chunks []*animgen.Chunk) error {
	records := make([]chunkRecord, 0, len(chunks))
	for _, ch := range chunks {
		records = append(records, chunkRecord{
			ID:   ch.ID,
			Text: ch.Content,
			Metadata: chunkMetadata{
				Source: ch.Source,
				Index:  ch.Index,
				Hash:   ch.Hash,
			},
		})
	}
	return WriteJSONL(c.ChunksPath(), records)
}

// Clear removes both cache files. Missing files are not an error.
func (c *Cache) Clear() error {
	for _, p := range []string{c.PagesPath(), c.ChunksPath()} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}
