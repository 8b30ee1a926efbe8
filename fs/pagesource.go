package fs

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/fwojciec/animgen"
	"golang.org/x/sync/errgroup"
)

var _ animgen.PageSource = (*PageSource)(nil)

// PageSource extracts pages from a directory of mirrored HTML files.
type PageSource struct {
	Dir       string
	Extractor animgen.Extractor
	Converter animgen.Converter

	// Concurrency limits how many files are parsed at once.
	// Defaults to the number of CPUs.
	Concurrency int
}

// NewPageSource creates a PageSource for dir.
func NewPageSource(dir string, extractor animgen.Extractor, converter animgen.Converter) *PageSource {
	return &PageSource{
		Dir:       dir,
		Extractor: extractor,
		Converter: converter,
	}
}

// Pages walks Dir recursively for *.html files and extracts each one.
// Pages in the result follow the lexical order of their paths. Files that
// fail extraction or contain no text are listed in PageSet.Skipped.
func (s *PageSource) Pages(ctx context.Context) (*animgen.PageSet, error) {
	info, err := os.Stat(s.Dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, animgen.Errorf(animgen.ENOTFOUND, "documentation directory %q not found", s.Dir)
	} else if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, animgen.Errorf(animgen.EINVALID, "documentation path %q is not a directory", s.Dir)
	}

	var files []string
	err = filepath.WalkDir(s.Dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".html") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, animgen.Errorf(animgen.ENOTFOUND, "no HTML files found in %q", s.Dir)
	}

	// Each worker writes only its own slot, so order is preserved without locking.
	pages := make([]*animgen.Page, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency())
	for i, path := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pages[i] = s.extract(path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	set := &animgen.PageSet{}
	for i, p := range pages {
		if p == nil {
			set.Skipped = append(set.Skipped, s.rel(files[i]))
			continue
		}
		set.Pages = append(set.Pages, p)
	}
	if len(set.Pages) == 0 {
		return nil, animgen.Errorf(animgen.ENOTFOUND, "no text could be extracted from %d HTML files in %q", len(files), s.Dir)
	}
	return set, nil
}

// extract returns nil when the file yields no usable text.
func (s *PageSource) extract(path string) *animgen.Page {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	result, err := s.Extractor.Extract(string(data))
	if err != nil {
		return nil
	}
	text, err := s.Converter.Convert(result.ContentHTML)
	if err != nil || strings.TrimSpace(text) == "" {
		return nil
	}
	return &animgen.Page{
		Source: s.rel(path),
		Title:  result.Title,
		Text:   text,
	}
}

func (s *PageSource) rel(path string) string {
	rel, err := filepath.Rel(s.Dir, path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

func (s *PageSource) concurrency() int {
	if s.Concurrency > 0 {
		return s.Concurrency
	}
	return runtime.NumCPU()
}
