package animgen

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ManimImport is the wildcard import every generated script needs.
const ManimImport = "from manim import *"

var (
	fenceRe     = regexp.MustCompile("```[A-Za-z0-9_+-]*")
	manimImport = regexp.MustCompile(`(?m)^\s*(from\s+manim\b|import\s+manim\b)`)
	classNameRe = regexp.MustCompile(`class\s+(\w+)\s*\(`)
)

// riskyCalls are scene calls that abort a whole render when they raise.
var riskyCalls = []string{"self.play(", "self.add(", "self.wait(", "self.remove(", "self.clear("}

// StripFences removes markdown code fence markers the model adds despite
// being told not to.
func StripFences(code string) string {
	return strings.TrimSpace(fenceRe.ReplaceAllString(code, ""))
}

// EnsureImport prepends the wildcard manim import when the script has none.
func EnsureImport(code string) string {
	if manimImport.MatchString(code) {
		return code
	}
	return ManimImport + "\n\n" + code
}

// WrapRiskyCalls wraps every scene call statement in a try/except block
// that prints the error and lets the rest of the scene run. Statements that
// span several lines are wrapped as a whole. Statements directly inside an
// existing try block are left alone, so wrapping twice changes nothing.
func WrapRiskyCalls(code string) string {
	lines := strings.Split(code, "\n")
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		trimmed := strings.TrimLeft(line, " \t")
		indent := line[:len(line)-len(trimmed)]

		if !isRiskyCall(trimmed) || insideTry(lines, i, indent) {
			out = append(out, line)
			continue
		}

		end := i
		depth := parenDelta(trimmed)
		for depth > 0 && end+1 < len(lines) {
			end++
			depth += parenDelta(lines[end])
		}

		out = append(out, indent+"try:")
		for _, stmt := range lines[i : end+1] {
			if strings.TrimSpace(stmt) == "" {
				out = append(out, stmt)
				continue
			}
			out = append(out, "    "+stmt)
		}
		out = append(out,
			indent+"except Exception as e:",
			indent+"    print(f'❌ Error: {e}')",
		)
		i = end
	}

	return strings.Join(out, "\n")
}

func isRiskyCall(trimmed string) bool {
	for _, prefix := range riskyCalls {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}

// insideTry reports whether the statement at line i belongs to a try block,
// i.e. the nearest less indented line above it is "try:".
func insideTry(lines []string, i int, indent string) bool {
	for j := i - 1; j >= 0; j-- {
		prev := strings.TrimLeft(lines[j], " \t")
		if prev == "" || strings.HasPrefix(prev, "#") {
			continue
		}
		if len(lines[j])-len(prev) >= len(indent) {
			continue
		}
		return strings.TrimSpace(prev) == "try:"
	}
	return false
}

// parenDelta returns the change in bracket depth across one line of Python,
// ignoring brackets inside string literals and comments.
func parenDelta(line string) int {
	depth := 0
	var quote rune
	escaped := false
	for _, r := range line {
		if quote != 0 {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == quote:
				quote = 0
			}
			continue
		}
		switch r {
		case '#':
			return depth
		case '\'', '"':
			quote = r
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
	}
	return depth
}

// ClassName returns the name of the first class defined in code.
// Returns ENOTFOUND when code defines no class.
func ClassName(code string) (string, error) {
	m := classNameRe.FindStringSubmatch(code)
	if m == nil {
		return "", Errorf(ENOTFOUND, "could not find a class name in the generated code")
	}
	return m[1], nil
}

// FallbackScene returns a minimal scene that titles the query. It is
// written when code generation fails so the user still gets a runnable file.
func FallbackScene(query string) string {
	return fmt.Sprintf(`%s

class %s(Scene):
    def construct(self):
        # Title
        title = Text(%s, font_size=36)
        self.play(Write(title))
        self.wait(1)

        # Simple animation
        circle = Circle(radius=1, color=BLUE)
        self.play(Create(circle))
        self.wait(1)

        # Clean up
        self.play(FadeOut(title), FadeOut(circle))
        self.wait(0.5)
`, ManimImport, SceneClassName(query), strconv.Quote(strings.TrimSpace(query)))
}

// SceneClassName derives a Python class name from a query, e.g.
// "What is bubble sort?" becomes "WhatIsBubbleSortAnimation".
func SceneClassName(query string) string {
	title := cases.Title(language.English).String(query)
	var b strings.Builder
	for _, r := range title {
		if r == '_' || r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" || unicode.IsDigit(rune(name[0])) {
		name = "Scene" + name
	}
	return name + "Animation"
}

// OutputFileName derives the script file name from the first five words of
// a query, e.g. "What is bubble sort?" becomes "What_is_bubble_sort.py".
// Characters that are unsafe in file names are dropped.
func OutputFileName(query string) string {
	words := strings.Fields(query)
	if len(words) > 5 {
		words = words[:5]
	}

	var b strings.Builder
	for _, r := range strings.Join(words, "_") {
		if strings.ContainsRune(`/\:*?"<>|`, r) || unicode.IsControl(r) {
			continue
		}
		b.WriteRune(r)
	}

	name := strings.Trim(b.String(), "._")
	if name == "" {
		name = "animation"
	}
	return name + ".py"
}

// CleanCode applies the standard post-processing to a model response:
// fences are stripped, the manim import is ensured and, when wrap is set,
// scene calls are wrapped in try/except blocks.
func CleanCode(code string, wrap bool) string {
	code = EnsureImport(StripFences(code))
	if wrap {
		code = WrapRiskyCalls(code)
	}
	return code
}
