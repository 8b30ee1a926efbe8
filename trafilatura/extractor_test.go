package trafilatura_test

import (
	"testing"

	"github.com/fwojciec/animgen"
	"github.com/fwojciec/animgen/trafilatura"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sphinxPage = `<!DOCTYPE html>
<html>
<head>
<title>Circle - Manim Community</title>
<meta property="og:title" content="Circle">
</head>
<body>
<nav class="sidebar">Reference | Tutorials | Guides</nav>
<main>
<article>
<h1>Circle</h1>
<p>A circle is a mobject with a given radius. It is one of the most common shapes used in scenes,
and it supports stroke and fill colors as well as the usual transformation methods.</p>
<pre><code>circle = Circle(radius=1, color=BLUE)
self.play(Create(circle))</code></pre>
<p>Circles can be positioned relative to other mobjects using next_to and move_to, which keeps
them inside the frame when many objects are on screen at the same time.</p>
</article>
</main>
<footer>Copyright Manim Community developers</footer>
</body>
</html>`

func TestExtractor_Extract(t *testing.T) {
	t.Parallel()

	t.Run("extracts title and main content", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(sphinxPage)

		require.NoError(t, err)
		assert.Contains(t, result.Title, "Circle")
		assert.Contains(t, result.ContentHTML, "A circle is a mobject")
	})

	t.Run("removes navigation and footer", func(t *testing.T) {
		t.Parallel()

		result, err := trafilatura.NewExtractor().Extract(sphinxPage)

		require.NoError(t, err)
		assert.NotContains(t, result.ContentHTML, "Reference | Tutorials")
		assert.NotContains(t, result.ContentHTML, "Copyright")
	})

	t.Run("rejects empty input", func(t *testing.T) {
		t.Parallel()

		_, err := trafilatura.NewExtractor().Extract("")

		assert.Equal(t, animgen.EINVALID, animgen.ErrorCode(err))
	})
}
