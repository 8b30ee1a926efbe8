package mirror_test

import (
	"fmt"
	"sync"
	"testing"

	"github.com/fwojciec/animgen/mirror"
	"github.com/stretchr/testify/assert"
)

func TestFrontier(t *testing.T) {
	t.Parallel()

	t.Run("pops URLs in push order", func(t *testing.T) {
		t.Parallel()

		f := mirror.NewFrontier(100, 0.01)
		f.Push("https://docs.manim.community/en/stable/a.html")
		f.Push("https://docs.manim.community/en/stable/b.html")

		u, ok := f.Pop()
		assert.True(t, ok)
		assert.Equal(t, "https://docs.manim.community/en/stable/a.html", u)

		u, ok = f.Pop()
		assert.True(t, ok)
		assert.Equal(t, "https://docs.manim.community/en/stable/b.html", u)

		_, ok = f.Pop()
		assert.False(t, ok)
	})

	t.Run("rejects URLs it has seen, even after popping", func(t *testing.T) {
		t.Parallel()

		f := mirror.NewFrontier(100, 0.01)
		assert.True(t, f.Push("https://example.com/docs/"))
		_, _ = f.Pop()

		assert.False(t, f.Push("https://example.com/docs/"))
		assert.Equal(t, 0, f.Len())
	})

	t.Run("ignores fragments", func(t *testing.T) {
		t.Parallel()

		f := mirror.NewFrontier(100, 0.01)
		assert.True(t, f.Push("https://example.com/docs/page#intro"))
		assert.False(t, f.Push("https://example.com/docs/page#usage"))
		assert.True(t, f.Seen("https://example.com/docs/page"))

		u, _ := f.Pop()
		assert.Equal(t, "https://example.com/docs/page", u)
	})

	t.Run("is safe for concurrent pushes", func(t *testing.T) {
		t.Parallel()

		f := mirror.NewFrontier(1000, 0.001)
		var wg sync.WaitGroup
		for w := range 4 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range 50 {
					f.Push(fmt.Sprintf("https://example.com/%d/%d", w, i))
				}
			}()
		}
		wg.Wait()

		assert.InDelta(t, 200, f.Len(), 2)
	})
}
