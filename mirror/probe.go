package mirror

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/animgen"
)

// gitBookRenderDelay gives GitBook pages time to hydrate.
const gitBookRenderDelay = 2 * time.Second

// renderDelayer is implemented by fetchers that can wait for late
// rendering, such as rod.Fetcher.
type renderDelayer interface {
	SetRenderDelay(d time.Duration)
}

// jsFrameworks records whether a known framework needs a browser.
var jsFrameworks = map[animgen.Framework]bool{
	animgen.FrameworkGitBook:    true,
	animgen.FrameworkSphinx:     false,
	animgen.FrameworkMkDocs:     false,
	animgen.FrameworkDocusaurus: false,
	animgen.FrameworkVuePress:   false,
	animgen.FrameworkVitePress:  false,
	animgen.FrameworkNextra:     false,
}

// ChooseFetcher fetches sourceURL over plain HTTP and decides whether the
// site needs a browser. Known frameworks decide directly; for unknown ones
// both fetchers are tried and the browser wins when it yields noticeably
// more content. It never fails: when plain HTTP fails the browser is used,
// and when the browser fails plain HTTP is used.
func ChooseFetcher(
	ctx context.Context,
	sourceURL string,
	plain, browser animgen.Fetcher,
	detector animgen.FrameworkDetector,
	extractor animgen.Extractor,
	logger *slog.Logger,
) animgen.Fetcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	html, err := plain.Fetch(ctx, sourceURL)
	if err != nil {
		logger.Info("plain fetch failed, using browser", "url", sourceURL, "err", err)
		return browser
	}

	framework := detector.Detect(html)
	if framework == animgen.FrameworkGitBook {
		if d, ok := browser.(renderDelayer); ok {
			d.SetRenderDelay(gitBookRenderDelay)
		}
	}
	if needsJS, known := jsFrameworks[framework]; known {
		logger.Info("detected framework", "framework", framework, "browser", needsJS)
		if needsJS {
			return browser
		}
		return plain
	}

	rendered, err := browser.Fetch(ctx, sourceURL)
	if err != nil {
		logger.Info("browser fetch failed, using plain HTTP", "url", sourceURL, "err", err)
		return plain
	}
	if ContentDiffers(html, rendered, extractor) {
		logger.Info("page renders with JavaScript, using browser", "url", sourceURL)
		return browser
	}
	return plain
}

// ContentDiffers reports whether the rendered page carries at least half
// again as much main content as the plain one. Extraction errors count as
// a difference.
func ContentDiffers(plainHTML, renderedHTML string, extractor animgen.Extractor) bool {
	plain, err := extractor.Extract(plainHTML)
	if err != nil {
		return true
	}
	rendered, err := extractor.Extract(renderedHTML)
	if err != nil {
		return true
	}

	plainLen, renderedLen := len(plain.ContentHTML), len(rendered.ContentHTML)
	if plainLen == 0 {
		return renderedLen > 0
	}
	return float64(renderedLen) > float64(plainLen)*1.5
}
