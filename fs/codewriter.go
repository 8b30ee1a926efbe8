package fs

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/fwojciec/animgen"
)

var _ animgen.CodeWriter = (*CodeWriter)(nil)

// CodeWriter writes generated scripts into a directory.
type CodeWriter struct {
	Dir string
}

// NewCodeWriter creates a CodeWriter for dir.
func NewCodeWriter(dir string) *CodeWriter {
	return &CodeWriter{Dir: dir}
}

// WriteCode writes code to Dir/name, replacing any previous file, and
// returns the path written.
func (w *CodeWriter) WriteCode(ctx context.Context, name, code string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", animgen.Errorf(animgen.EINVALID, "invalid script file name %q", name)
	}
	if strings.TrimSpace(code) == "" {
		return "", animgen.Errorf(animgen.EINVALID, "refusing to write empty script %q", name)
	}

	path := filepath.Join(w.Dir, name)
	if !strings.HasSuffix(code, "\n") {
		code += "\n"
	}
	if err := writeFileAtomic(path, []byte(code), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
