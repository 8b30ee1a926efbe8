package fs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fwojciec/animgen"
	"gopkg.in/yaml.v3"
)

// DefaultSymbolFiles are tried in order; the first usable one wins.
var DefaultSymbolFiles = []string{
	"manim_full_symbols_deep.json",
	"manim_flat_symbols.json",
	"manim_symbols.json",
}

var _ animgen.SymbolSource = (*SymbolSource)(nil)

// SymbolSource loads the symbol whitelist from the first usable symbol
// file, falling back to animgen.FallbackSymbols.
type SymbolSource struct {
	// Dir resolves relative entries of Files.
	Dir   string
	Files []string

	Logger *slog.Logger
}

// NewSymbolSource creates a SymbolSource trying DefaultSymbolFiles in dir.
func NewSymbolSource(dir string, logger *slog.Logger) *SymbolSource {
	return &SymbolSource{Dir: dir, Files: DefaultSymbolFiles, Logger: logger}
}

// Symbols returns the whitelist. Empty, unreadable or malformed files are
// skipped with a warning.
func (s *SymbolSource) Symbols(ctx context.Context) ([]*animgen.Symbol, error) {
	logger := s.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	for _, name := range s.Files {
		path := name
		if !filepath.IsAbs(path) {
			path = filepath.Join(s.Dir, name)
		}

		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		} else if err != nil {
			logger.Warn("cannot read symbol file", "path", path, "error", err)
			continue
		}
		if len(strings.TrimSpace(string(data))) == 0 {
			logger.Warn("symbol file is empty", "path", path)
			continue
		}

		symbols, err := ParseSymbols(data, formatOf(path))
		if err != nil {
			logger.Warn("cannot parse symbol file", "path", path, "error", err)
			continue
		}
		if len(symbols) == 0 {
			logger.Warn("symbol file lists no symbols", "path", path)
			continue
		}

		logger.Debug("loaded symbols", "path", path, "count", len(symbols))
		return symbols, nil
	}

	logger.Warn("no valid symbol file found, using fallback symbols")
	return animgen.FallbackSymbols(), nil
}

func formatOf(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// ParseSymbols decodes a symbol file in "json" or "yaml" format. Three
// shapes are understood:
//
//   - a flat list of {"id", "type", "module"} objects
//   - a short map of kind lists: {"classes": [...], "constants": [...], "methods": [...]}
//   - a deep map keyed by module: {module: {"constants": [[name, repr]],
//     "functions": [...], "classes": {Name: {"methods": [...]}}}}
//
// Modules of a deep map that failed introspection (carrying an "error"
// key) are skipped.
func ParseSymbols(data []byte, format string) ([]*animgen.Symbol, error) {
	var raw any
	var err error
	switch format {
	case "yaml":
		err = yaml.Unmarshal(data, &raw)
	case "json":
		err = json.Unmarshal(data, &raw)
	default:
		return nil, animgen.Errorf(animgen.EINVALID, "unknown symbol file format %q", format)
	}
	if err != nil {
		return nil, err
	}

	switch v := raw.(type) {
	case []any:
		return parseFlat(v), nil
	case map[string]any:
		if isShortMap(v) {
			return parseShort(v), nil
		}
		return parseDeep(v), nil
	default:
		return nil, fmt.Errorf("unsupported symbol file shape %T", raw)
	}
}

var shortKinds = map[string]animgen.SymbolKind{
	"classes":   animgen.SymbolClass,
	"functions": animgen.SymbolFunction,
	"methods":   animgen.SymbolMethod,
	"constants": animgen.SymbolConstant,
	"modules":   animgen.SymbolModule,
}

func parseFlat(entries []any) []*animgen.Symbol {
	var out []*animgen.Symbol
	for _, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		name := firstString(m, "id", "name")
		if name == "" {
			continue
		}
		out = append(out, &animgen.Symbol{
			Name:   name,
			Kind:   animgen.SymbolKind(firstString(m, "type", "kind")),
			Module: firstString(m, "module"),
		})
	}
	return out
}

// isShortMap reports whether every key names a kind and holds a list.
func isShortMap(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	for k, v := range m {
		if _, ok := shortKinds[k]; !ok {
			return false
		}
		if _, ok := v.([]any); !ok {
			return false
		}
	}
	return true
}

func parseShort(m map[string]any) []*animgen.Symbol {
	var out []*animgen.Symbol
	for _, key := range []string{"classes", "functions", "methods", "constants", "modules"} {
		for _, name := range names(m[key]) {
			out = append(out, &animgen.Symbol{Name: name, Kind: shortKinds[key]})
		}
	}
	return out
}

func parseDeep(modules map[string]any) []*animgen.Symbol {
	var out []*animgen.Symbol
	for _, module := range sortedKeys(modules) {
		info, ok := modules[module].(map[string]any)
		if !ok {
			continue
		}
		if _, failed := info["error"]; failed {
			continue
		}

		for _, name := range names(info["constants"]) {
			out = append(out, &animgen.Symbol{Name: name, Kind: animgen.SymbolConstant, Module: module})
		}
		for _, name := range names(info["functions"]) {
			out = append(out, &animgen.Symbol{Name: name, Kind: animgen.SymbolFunction, Module: module})
		}

		switch classes := info["classes"].(type) {
		case map[string]any:
			for _, class := range sortedKeys(classes) {
				out = append(out, &animgen.Symbol{Name: class, Kind: animgen.SymbolClass, Module: module})
				members, _ := classes[class].(map[string]any)
				for _, method := range names(members["methods"]) {
					out = append(out, &animgen.Symbol{Name: class + "." + method, Kind: animgen.SymbolMethod, Module: module})
				}
			}
		case []any:
			for _, class := range names(classes) {
				out = append(out, &animgen.Symbol{Name: class, Kind: animgen.SymbolClass, Module: module})
			}
		}
	}
	return out
}

// names extracts symbol names from a list of strings or of [name, repr]
// pairs.
func names(v any) []string {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	var out []string
	for _, item := range list {
		switch x := item.(type) {
		case string:
			out = append(out, x)
		case []any:
			if len(x) > 0 {
				if s, ok := x[0].(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := m[k].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
