package mock

import (
	"context"

	"github.com/fwojciec/animgen"
)

var _ animgen.SymbolSource = (*SymbolSource)(nil)

// SymbolSource is a mock implementation of animgen.SymbolSource.
type SymbolSource struct {
	SymbolsFn func(ctx context.Context) ([]*animgen.Symbol, error)
}

func (s *SymbolSource) Symbols(ctx context.Context) ([]*animgen.Symbol, error) {
	return s.SymbolsFn(ctx)
}
