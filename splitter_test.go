package animgen_test

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/fwojciec/animgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitter_Split(t *testing.T) {
	t.Parallel()

	t.Run("merges words with overlap", func(t *testing.T) {
		t.Parallel()

		s := &animgen.Splitter{ChunkSize: 7, ChunkOverlap: 3}

		chunks, err := s.Split("aaa bbb ccc ddd")

		require.NoError(t, err)
		assert.Equal(t, []string{"aaa bbb", "bbb ccc", "ccc ddd"}, chunks)
	})

	t.Run("no overlap when overlap is zero", func(t *testing.T) {
		t.Parallel()

		s := &animgen.Splitter{ChunkSize: 7, ChunkOverlap: 0}

		chunks, err := s.Split("aaa bbb ccc ddd")

		require.NoError(t, err)
		assert.Equal(t, []string{"aaa bbb", "ccc ddd"}, chunks)
	})

	t.Run("falls back to characters for unbroken text", func(t *testing.T) {
		t.Parallel()

		s := &animgen.Splitter{ChunkSize: 4, ChunkOverlap: 1}

		chunks, err := s.Split("abcdefghij")

		require.NoError(t, err)
		assert.Equal(t, []string{"abcd", "defg", "ghij"}, chunks)
	})

	t.Run("keeps short text in one chunk", func(t *testing.T) {
		t.Parallel()

		chunks, err := animgen.NewSplitter().Split("para one\n\npara two")

		require.NoError(t, err)
		assert.Equal(t, []string{"para one\n\npara two"}, chunks)
	})

	t.Run("empty text yields no chunks", func(t *testing.T) {
		t.Parallel()

		chunks, err := animgen.NewSplitter().Split("")

		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("drops whitespace-only chunks", func(t *testing.T) {
		t.Parallel()

		chunks, err := animgen.NewSplitter().Split("\n\n   \n\n")

		require.NoError(t, err)
		assert.Empty(t, chunks)
	})

	t.Run("measures size in characters", func(t *testing.T) {
		t.Parallel()

		s := &animgen.Splitter{ChunkSize: 3, ChunkOverlap: 0}

		chunks, err := s.Split("ééé ààà")

		require.NoError(t, err)
		assert.Equal(t, []string{"ééé", "ààà"}, chunks)
	})

	t.Run("rejects invalid parameters", func(t *testing.T) {
		t.Parallel()

		for _, s := range []*animgen.Splitter{
			{ChunkSize: 0, ChunkOverlap: 0},
			{ChunkSize: 10, ChunkOverlap: -1},
			{ChunkSize: 10, ChunkOverlap: 10},
		} {
			_, err := s.Split("text")
			assert.Equal(t, animgen.EINVALID, animgen.ErrorCode(err))
		}
	})
}

func TestSplitter_SizeAndOverlapBounds(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := range 400 {
		fmt.Fprintf(&b, "word%d ", i)
		if i%37 == 0 {
			b.WriteString("\n")
		}
		if i%91 == 0 {
			b.WriteString("\n\n")
		}
	}
	s := &animgen.Splitter{ChunkSize: 120, ChunkOverlap: 30}

	chunks, err := s.Split(b.String())

	require.NoError(t, err)
	require.Greater(t, len(chunks), 1)
	for i, c := range chunks {
		assert.LessOrEqual(t, utf8.RuneCountInString(c), 120, "chunk %d too long", i)
		assert.Equal(t, strings.TrimSpace(c), c)
		if i > 0 {
			assert.LessOrEqual(t, sharedOverlap(chunks[i-1], c), 30, "chunk %d overlaps too much", i)
		}
	}
}

// sharedOverlap returns the length of the longest suffix of a that is a prefix of b.
func sharedOverlap(a, b string) int {
	for n := min(len(a), len(b)); n > 0; n-- {
		if strings.HasSuffix(a, b[:n]) {
			return utf8.RuneCountInString(b[:n])
		}
	}
	return 0
}

func TestSplitter_SplitPages(t *testing.T) {
	t.Parallel()

	s := &animgen.Splitter{ChunkSize: 7, ChunkOverlap: 3}
	pages := []*animgen.Page{
		{Source: "a.html", Text: "aaa bbb ccc"},
		{Source: "b.html", Text: "ddd"},
	}

	chunks, err := s.SplitPages(pages)

	require.NoError(t, err)
	require.Len(t, chunks, 3)
	assert.Equal(t, "a.html", chunks[0].Source)
	assert.Equal(t, 0, chunks[0].Index)
	assert.Equal(t, 1, chunks[1].Index)
	assert.Equal(t, "b.html", chunks[2].Source)
	assert.Equal(t, 0, chunks[2].Index)
	assert.Equal(t, animgen.ContentHash("bbb ccc"), chunks[1].Hash)
	assert.Equal(t, animgen.ChunkID("a.html", 1, chunks[1].Hash), chunks[1].ID)
	assert.NotEqual(t, chunks[0].ID, chunks[1].ID)
}
