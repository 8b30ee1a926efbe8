package bloom_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/animgen/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter_AddAndTest(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)
	page := "https://docs.manim.community/en/stable/reference/manim.Circle.html"

	assert.False(t, f.Test(page))
	f.Add(page)
	assert.True(t, f.Test(page))
	assert.False(t, f.Test("https://docs.manim.community/en/stable/reference/manim.Square.html"))
}

func TestFilter_Seen(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(100, 0.01)

	assert.False(t, f.Seen("https://docs.manim.community/en/stable/"))
	assert.True(t, f.Seen("https://docs.manim.community/en/stable/"))
	assert.False(t, f.Seen("https://docs.manim.community/en/latest/"))
}

func TestFilter_EstimatedCount(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(1000, 0.01)
	assert.Equal(t, uint(0), f.EstimatedCount())

	for i := range 3 {
		f.Add(fmt.Sprintf("https://docs.manim.community/page%d.html", i))
		f.Add(fmt.Sprintf("https://docs.manim.community/page%d.html", i))
	}

	count := f.EstimatedCount()
	assert.True(t, count >= 2 && count <= 4, "expected count near 3, got %d", count)
}

func TestNewFilter_DegenerateArguments(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(0, 0)

	f.Add("a")
	assert.True(t, f.Test("a"))
}

func TestFilter_FalsePositiveRate(t *testing.T) {
	t.Parallel()

	const n = 10000
	f := bloom.NewFilter(n, 0.01)
	for i := range n {
		f.Add(fmt.Sprintf("https://docs.example/added/%d", i))
	}

	falsePositives := 0
	for i := range n {
		if f.Test(fmt.Sprintf("https://docs.example/absent/%d", i)) {
			falsePositives++
		}
	}

	rate := float64(falsePositives) / n
	assert.Less(t, rate, 0.02, "false positive rate %f exceeds 2%%", rate)
}
