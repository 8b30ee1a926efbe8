package fs_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/animgen"
	"github.com/fwojciec/animgen/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAcquireLock(t *testing.T) {
	t.Parallel()

	t.Run("held lock conflicts until released", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "cache", fs.LockFile)
		release, err := fs.AcquireLock(context.Background(), path, time.Second)
		require.NoError(t, err)

		_, err = fs.AcquireLock(context.Background(), path, 50*time.Millisecond)
		assert.Equal(t, animgen.ECONFLICT, animgen.ErrorCode(err))

		release()
		release2, err := fs.AcquireLock(context.Background(), path, time.Second)
		require.NoError(t, err)
		release2()
	})

	t.Run("canceled context stops waiting", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), fs.LockFile)
		release, err := fs.AcquireLock(context.Background(), path, time.Second)
		require.NoError(t, err)
		defer release()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err = fs.AcquireLock(ctx, path, time.Minute)

		assert.ErrorIs(t, err, context.Canceled)
	})
}
