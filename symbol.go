package animgen

import (
	"context"
	"slices"
	"strings"
)

// SymbolKind categorizes an introspected library symbol.
type SymbolKind string

// SymbolKind constants.
const (
	SymbolClass    SymbolKind = "class"
	SymbolFunction SymbolKind = "function"
	SymbolMethod   SymbolKind = "method"
	SymbolConstant SymbolKind = "constant"
	SymbolModule   SymbolKind = "module"
)

// symbolKindOrder is the order kinds appear in a formatted whitelist.
var symbolKindOrder = []SymbolKind{SymbolClass, SymbolFunction, SymbolMethod, SymbolConstant, SymbolModule}

// Symbol is one name the model is allowed to use in generated code.
type Symbol struct {
	Name   string     `json:"id" yaml:"id"`
	Kind   SymbolKind `json:"type" yaml:"type"`
	Module string     `json:"module,omitempty" yaml:"module,omitempty"`
}

// SymbolSource loads the symbol whitelist.
type SymbolSource interface {
	Symbols(ctx context.Context) ([]*Symbol, error)
}

// DefaultMaxSymbolChars caps the whitelist text placed in a prompt.
const DefaultMaxSymbolChars = 10000

// TruncationMarker is appended to prompt sections cut to fit.
const TruncationMarker = "\n... (truncated for length)"

// FallbackSymbols returns the minimal whitelist used when no symbol file
// is available.
func FallbackSymbols() []*Symbol {
	var out []*Symbol
	add := func(kind SymbolKind, names ...string) {
		for _, n := range names {
			out = append(out, &Symbol{Name: n, Kind: kind})
		}
	}
	add(SymbolClass, "Scene", "MovingCameraScene", "Line", "Circle", "Square", "Text", "Dot", "Arrow", "Rectangle", "Ellipse", "Triangle")
	add(SymbolConstant, "UP", "DOWN", "LEFT", "RIGHT", "ORIGIN", "WHITE", "BLACK", "RED", "GREEN", "BLUE", "YELLOW", "PURPLE", "ORANGE")
	add(SymbolMethod, "add", "remove", "play", "wait", "create", "fade_in", "fade_out", "move_to", "shift", "scale", "rotate")
	return out
}

// FormatSymbols renders symbols as one line each, grouped by kind, and cuts
// the result to max characters. A max of zero or less disables the limit.
// Duplicate symbols are listed once.
func FormatSymbols(symbols []*Symbol, max int) string {
	groups := make(map[SymbolKind][]*Symbol)
	var extra []SymbolKind
	seen := make(map[Symbol]bool)
	for _, s := range symbols {
		if s == nil || s.Name == "" || seen[*s] {
			continue
		}
		seen[*s] = true
		if _, ok := groups[s.Kind]; !ok && !slices.Contains(symbolKindOrder, s.Kind) {
			extra = append(extra, s.Kind)
		}
		groups[s.Kind] = append(groups[s.Kind], s)
	}

	var b strings.Builder
	for _, kind := range append(append([]SymbolKind{}, symbolKindOrder...), extra...) {
		for _, s := range groups[kind] {
			b.WriteString(s.Name)
			b.WriteString(" (")
			b.WriteString(string(s.Kind))
			if s.Module != "" {
				b.WriteString(", ")
				b.WriteString(s.Module)
			}
			b.WriteString(")\n")
		}
	}

	return Truncate(strings.TrimSuffix(b.String(), "\n"), max)
}

// Truncate cuts s to max characters and appends TruncationMarker when
// anything was removed. A max of zero or less returns s unchanged.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + TruncationMarker
}
