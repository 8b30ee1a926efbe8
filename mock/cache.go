package mock

import "github.com/fwojciec/animgen"

var _ animgen.Cache = (*Cache)(nil)

// Cache is a mock implementation of animgen.Cache.
type Cache struct {
	LoadPagesFn  func() ([]*animgen.Page, error)
	SavePagesFn  func(pages []*animgen.Page) error
	LoadChunksFn func() ([]*animgen.Chunk, error)
	SaveChunksFn func(chunks []*animgen.Chunk) error
	ClearFn      func() error
}

func (c *Cache) LoadPages() ([]*animgen.Page, error) {
	return c.LoadPagesFn()
}

func (c *Cache) SavePages(pages []*animgen.Page) error {
	return c.SavePagesFn(pages)
}

func (c *Cache) LoadChunks() ([]*animgen.Chunk, error) {
	return c.LoadChunksFn()
}

func (c *Cache) SaveChunks(chunks []*animgen.Chunk) error {
	return c.SaveChunksFn(chunks)
}

func (c *Cache) Clear() error {
	return c.ClearFn()
}
