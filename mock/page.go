package mock

import (
	"context"

	"github.com/fwojciec/animgen"
)

var _ animgen.PageSource = (*PageSource)(nil)

// PageSource is a mock implementation of animgen.PageSource.
type PageSource struct {
	PagesFn func(ctx context.Context) (*animgen.PageSet, error)
}

func (s *PageSource) Pages(ctx context.Context) (*animgen.PageSet, error) {
	return s.PagesFn(ctx)
}

var _ animgen.HTMLStore = (*HTMLStore)(nil)

// HTMLStore is a mock implementation of animgen.HTMLStore.
type HTMLStore struct {
	SaveFn   func(ctx context.Context, page *animgen.RawPage) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *HTMLStore) Save(ctx context.Context, page *animgen.RawPage) error {
	return s.SaveFn(ctx, page)
}

func (s *HTMLStore) Commit() error {
	return s.CommitFn()
}

func (s *HTMLStore) Abort() error {
	return s.AbortFn()
}
