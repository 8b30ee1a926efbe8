// Package rag wires the retrieval-augmented generation pipeline: building
// the chunk index, retrieving context for a question, and turning the
// question into a saved (and optionally rendered) animation script.
package rag

import (
	"context"
	"strings"

	"github.com/fwojciec/animgen"
)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 4

var _ animgen.Retriever = (*Retriever)(nil)

// Retriever embeds questions and searches the chunk index.
type Retriever struct {
	Embedder animgen.Embedder
	Index    animgen.ChunkIndex
}

// NewRetriever creates a new Retriever.
func NewRetriever(embedder animgen.Embedder, index animgen.ChunkIndex) *Retriever {
	return &Retriever{Embedder: embedder, Index: index}
}

// Retrieve returns up to opts.Limit chunks (DefaultTopK when zero) scoring
// at least opts.MinScore. Returns ECONFLICT when the index was built with a
// different embedding model.
func (r *Retriever) Retrieve(ctx context.Context, query string, opts animgen.SearchOptions) ([]animgen.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, animgen.Errorf(animgen.EINVALID, "query required")
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultTopK
	}

	meta, err := r.Index.Meta(ctx)
	if animgen.ErrorCode(err) == animgen.ENOTFOUND {
		return nil, animgen.Errorf(animgen.ENOTFOUND, "index is empty; run animgen index")
	} else if err != nil {
		return nil, err
	}
	if meta.ModelID != r.Embedder.ModelID() {
		return nil, animgen.Errorf(animgen.ECONFLICT,
			"index was built with %s but queries use %s; rebuild with animgen index --force",
			meta.ModelID, r.Embedder.ModelID())
	}

	vec, err := r.Embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, err
	}
	return r.Index.Search(ctx, vec, opts)
}
