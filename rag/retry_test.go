package rag_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/animgen"
	"github.com/fwojciec/animgen/mock"
	"github.com/fwojciec/animgen/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noDelays = []time.Duration{0, 0, 0}

func TestRetry(t *testing.T) {
	t.Parallel()

	t.Run("retries unavailable errors until success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		got, err := rag.Retry(context.Background(), noDelays, nil, "op", func(ctx context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", animgen.Errorf(animgen.EUNAVAILABLE, "busy")
			}
			return "ok", nil
		})

		require.NoError(t, err)
		assert.Equal(t, "ok", got)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after the last delay", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, err := rag.Retry(context.Background(), noDelays, nil, "op", func(ctx context.Context) (int, error) {
			calls++
			return 0, animgen.Errorf(animgen.EUNAVAILABLE, "busy")
		})

		assert.Equal(t, animgen.EUNAVAILABLE, animgen.ErrorCode(err))
		assert.Equal(t, 4, calls)
	})

	t.Run("does not retry other errors", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, err := rag.Retry(context.Background(), noDelays, nil, "op", func(ctx context.Context) (int, error) {
			calls++
			return 0, errors.New("bad request")
		})

		require.Error(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("stops waiting when context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		_, err := rag.Retry(ctx, []time.Duration{time.Hour}, nil, "op", func(ctx context.Context) (int, error) {
			calls++
			cancel()
			return 0, animgen.Errorf(animgen.EUNAVAILABLE, "busy")
		})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestRetryGenerator(t *testing.T) {
	t.Parallel()

	calls := 0
	inner := &mock.Generator{
		GenerateFn: func(ctx context.Context, prompt string, opts animgen.GenerateOptions) (string, error) {
			calls++
			if calls == 1 {
				return "", animgen.Errorf(animgen.EUNAVAILABLE, "429")
			}
			return "code", nil
		},
		ModelFn: func() string { return "m" },
	}

	gen := rag.WithRetry(inner, nil)
	gen.Delays = noDelays

	got, err := gen.Generate(context.Background(), "p", animgen.GenerateOptions{})

	require.NoError(t, err)
	assert.Equal(t, "code", got)
	assert.Equal(t, "m", gen.Model())
}

func TestRetryEmbedder(t *testing.T) {
	t.Parallel()

	calls := 0
	inner := &mock.Embedder{
		EmbedDocumentsFn: func(ctx context.Context, texts []string) ([][]float32, error) {
			calls++
			if calls == 1 {
				return nil, animgen.Errorf(animgen.EUNAVAILABLE, "503")
			}
			return [][]float32{{1}}, nil
		},
		EmbedQueryFn: func(ctx context.Context, text string) ([]float32, error) {
			return nil, animgen.Errorf(animgen.EINVALID, "empty")
		},
		ModelIDFn: func() string { return "gemini:x" },
	}

	emb := rag.WithEmbedRetry(inner, nil)
	emb.Delays = noDelays

	vecs, err := emb.EmbedDocuments(context.Background(), []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, [][]float32{{1}}, vecs)

	_, err = emb.EmbedQuery(context.Background(), "")
	assert.Equal(t, animgen.EINVALID, animgen.ErrorCode(err))
	assert.Equal(t, "gemini:x", emb.ModelID())
}
