package animgen

// Cache keeps extracted pages and split chunks between index builds so a
// rebuild only re-embeds what changed. Load methods return ENOTFOUND when
// nothing is cached.
type Cache interface {
	LoadPages() ([]*Page, error)
	SavePages(pages []*Page) error
	LoadChunks() ([]*Chunk, error)
	SaveChunks(chunks []*Chunk) error
	Clear() error
}
