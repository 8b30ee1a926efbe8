package mock

import (
	"context"

	"github.com/fwojciec/animgen"
)

var _ animgen.GenerationService = (*GenerationService)(nil)

// GenerationService is a mock implementation of animgen.GenerationService.
type GenerationService struct {
	CreateGenerationFn   func(ctx context.Context, g *animgen.Generation) error
	FindGenerationByIDFn func(ctx context.Context, id string) (*animgen.Generation, error)
	FindGenerationsFn    func(ctx context.Context, filter animgen.GenerationFilter) ([]*animgen.Generation, error)
	UpdateGenerationFn   func(ctx context.Context, id string, upd animgen.GenerationUpdate) (*animgen.Generation, error)
	StatsFn              func(ctx context.Context, popular int) (*animgen.GenerationStats, error)
}

func (s *GenerationService) CreateGeneration(ctx context.Context, g *animgen.Generation) error {
	return s.CreateGenerationFn(ctx, g)
}

func (s *GenerationService) FindGenerationByID(ctx context.Context, id string) (*animgen.Generation, error) {
	return s.FindGenerationByIDFn(ctx, id)
}

func (s *GenerationService) FindGenerations(ctx context.Context, filter animgen.GenerationFilter) ([]*animgen.Generation, error) {
	return s.FindGenerationsFn(ctx, filter)
}

func (s *GenerationService) UpdateGeneration(ctx context.Context, id string, upd animgen.GenerationUpdate) (*animgen.Generation, error) {
	return s.UpdateGenerationFn(ctx, id, upd)
}

func (s *GenerationService) Stats(ctx context.Context, popular int) (*animgen.GenerationStats, error) {
	return s.StatsFn(ctx, popular)
}
