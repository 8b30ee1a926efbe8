package fs

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fwojciec/animgen"
)

var _ animgen.HTMLStore = (*HTMLStore)(nil)

// HTMLStore implements animgen.HTMLStore with atomic update semantics.
// Pages are saved to a temporary directory, then moved into place on
// Commit, so an interrupted mirror never leaves a half-updated docs tree.
type HTMLStore struct {
	baseDir string
	name    string
}

// NewHTMLStore creates a new HTMLStore.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewHTMLStore(baseDir, name string) *HTMLStore {
	return &HTMLStore{
		baseDir: baseDir,
		name:    name,
	}
}

// Dir returns the final directory pages are committed to.
func (s *HTMLStore) Dir() string {
	return s.finalDir()
}

func (s *HTMLStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *HTMLStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// Save writes the page's HTML under the temporary directory.
func (s *HTMLStore) Save(ctx context.Context, page *animgen.RawPage) error {
	relPath, err := URLToPath(page.URL)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(s.tempDir(), filepath.FromSlash(relPath))
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, []byte(page.HTML), 0o644)
}

// Commit replaces the final directory with everything saved so far.
func (s *HTMLStore) Commit() error {
	if _, err := os.Stat(s.tempDir()); errors.Is(err, os.ErrNotExist) {
		return animgen.Errorf(animgen.ENOTFOUND, "no pages were saved")
	}
	if err := os.RemoveAll(s.finalDir()); err != nil {
		return err
	}
	return os.Rename(s.tempDir(), s.finalDir())
}

// Abort discards everything saved since the last Commit.
func (s *HTMLStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}

// URLToPath converts a documentation URL to a relative .html file path.
// Example: https://docs.manim.community/en/stable/reference/ → en/stable/reference/index.html
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", animgen.Errorf(animgen.EINVALID, "invalid URL %q: %v", rawURL, err)
	}

	p := u.Path
	if p == "" || p == "/" {
		return "index.html", nil
	}

	trailing := strings.HasSuffix(p, "/")
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	if p == "" {
		return "index.html", nil
	}
	if trailing {
		return p + "/index.html", nil
	}

	switch strings.ToLower(path.Ext(p)) {
	case ".html", ".htm":
		return p, nil
	default:
		return p + ".html", nil
	}
}
