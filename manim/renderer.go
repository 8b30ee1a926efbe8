// Package manim renders generated scenes by running the Manim CLI.
package manim

import (
	"bytes"
	"context"
	"errors"
	"os"
	"os/exec"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/fwojciec/animgen"
)

// Defaults for Renderer.
const (
	DefaultPython  = "python3"
	DefaultTimeout = 60 * time.Second
	DefaultQuality = "l"
)

// stderrTailLines bounds how much renderer output is carried in errors.
const stderrTailLines = 20

// Qualities lists the accepted quality flag suffixes, lowest first.
var Qualities = []string{"l", "m", "h", "p", "k"}

var outputPatterns = []*regexp.Regexp{
	regexp.MustCompile(`Rendered (.+\.(?:mp4|gif|png|mov))`),
	regexp.MustCompile(`File ready at\s+'?([^'\n]+\.(?:mp4|gif|png|mov))'?`),
}

var _ animgen.Renderer = (*Renderer)(nil)

// Renderer runs "<Python> -m manim" as a subprocess.
type Renderer struct {
	// Python is the interpreter with manim installed.
	Python string

	// Timeout bounds a single render. Zero means DefaultTimeout.
	Timeout time.Duration

	// Dir is the working directory for the subprocess; media output
	// lands beneath it. Empty means the current directory.
	Dir string
}

// NewRenderer creates a Renderer using python.
func NewRenderer(python string) *Renderer {
	if python == "" {
		python = DefaultPython
	}
	return &Renderer{Python: python, Timeout: DefaultTimeout}
}

// Render renders className from file.
func (r *Renderer) Render(ctx context.Context, file, className string, opts animgen.RenderOptions) (*animgen.RenderResult, error) {
	if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
		return nil, animgen.Errorf(animgen.ENOTFOUND, "scene file %q not found", file)
	} else if err != nil {
		return nil, err
	}
	args, err := BuildArgs(file, className, opts)
	if err != nil {
		return nil, err
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, r.Python, args...)
	cmd.Dir = r.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	begin := time.Now()
	runErr := cmd.Run()
	result := &animgen.RenderResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(begin),
	}

	switch {
	case runErr == nil:
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return result, animgen.Errorf(animgen.EUNAVAILABLE, "render timed out after %s", timeout)
	case errors.Is(runErr, exec.ErrNotFound):
		return result, animgen.Errorf(animgen.EUNAVAILABLE, "cannot run %q: is Python with manim installed?", r.Python)
	case ctx.Err() != nil:
		return result, ctx.Err()
	default:
		return result, animgen.Errorf(animgen.EINTERNAL, "render failed: %v\n%s", runErr, tail(result.Stderr, stderrTailLines))
	}

	result.OutputFiles = ParseOutputFiles(result.Stdout + "\n" + result.Stderr)
	return result, nil
}

// BuildArgs returns the interpreter arguments for a render.
func BuildArgs(file, className string, opts animgen.RenderOptions) ([]string, error) {
	if className == "" {
		return nil, animgen.Errorf(animgen.EINVALID, "scene class name required")
	}
	quality := opts.Quality
	if quality == "" {
		quality = DefaultQuality
	}
	if !slices.Contains(Qualities, quality) {
		return nil, animgen.Errorf(animgen.EINVALID, "unknown quality %q (want one of %s)", quality, strings.Join(Qualities, ", "))
	}

	args := []string{"-m", "manim", "-q" + quality}
	if opts.Preview {
		args = append(args, "-p")
	}
	if opts.ConfigFile != "" {
		args = append(args, "--config_file", opts.ConfigFile)
	}
	return append(args, file, className), nil
}

// ParseOutputFiles extracts rendered media paths from renderer output,
// in order of appearance and without duplicates.
func ParseOutputFiles(output string) []string {
	type hit struct {
		pos  int
		path string
	}
	var hits []hit
	for _, re := range outputPatterns {
		for _, m := range re.FindAllStringSubmatchIndex(output, -1) {
			hits = append(hits, hit{pos: m[0], path: strings.TrimSpace(output[m[2]:m[3]])})
		}
	}
	slices.SortFunc(hits, func(a, b hit) int { return a.pos - b.pos })

	var files []string
	for _, h := range hits {
		if !slices.Contains(files, h.path) {
			files = append(files, h.path)
		}
	}
	return files
}

func tail(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
