package fs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fwojciec/animgen"
	"github.com/gofrs/flock"
)

// lockPollInterval is how often AcquireLock retries a held lock.
const lockPollInterval = 200 * time.Millisecond

// AcquireLock takes an exclusive advisory lock on path, waiting up to
// timeout for another holder to release it. The returned function releases
// the lock. Returns ECONFLICT when the lock is still held at the deadline.
func AcquireLock(ctx context.Context, path string, timeout time.Duration) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	l := flock.New(path)
	deadline := time.Now().Add(timeout)
	for {
		locked, err := l.TryLock()
		if err != nil {
			return nil, fmt.Errorf("cannot acquire lock %s: %w", path, err)
		}
		if locked {
			return func() { _ = l.Unlock() }, nil
		}
		if time.Now().After(deadline) {
			return nil, animgen.Errorf(animgen.ECONFLICT, "another index build is in progress (lock: %s)", path)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}
