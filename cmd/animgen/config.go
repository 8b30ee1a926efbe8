package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is read when present; --config loads another file.
const DefaultConfigPath = "~/.animgen/config.yaml"

// DefaultDotEnvPath is loaded into the environment before parsing.
const DefaultDotEnvPath = ".env"

// YAMLConfig is a kong.ConfigurationLoader for YAML files. Keys are flag
// names with dashes or underscores ("top_k: 6", "docs-dir: docs"). A value
// from the file is ignored when one of the flag's environment variables is
// set, so precedence is flag, environment, file, default.
func YAMLConfig(r io.Reader) (kong.Resolver, error) {
	values := map[string]any{}
	if err := yaml.NewDecoder(r).Decode(&values); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("invalid YAML config: %w", err)
	}

	normalized := make(map[string]any, len(values))
	for k, v := range values {
		normalized[strings.ReplaceAll(k, "_", "-")] = v
	}

	return kong.ResolverFunc(func(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
		for _, env := range flag.Envs {
			if v, ok := os.LookupEnv(env); ok && v != "" {
				return nil, nil
			}
		}
		v, ok := normalized[flag.Name]
		if !ok {
			return nil, nil
		}
		return v, nil
	}), nil
}

// ParseDotEnv reads KEY=VALUE lines. Blank lines and lines starting with
// '#' are skipped, an "export " prefix is allowed, and one pair of
// matching quotes around the value is removed.
func ParseDotEnv(r io.Reader) (map[string]string, error) {
	out := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		i := strings.Index(line, "=")
		if i <= 0 {
			continue
		}
		k := strings.TrimSpace(line[:i])
		if k == "" {
			continue
		}
		out[k] = unquote(strings.TrimSpace(line[i+1:]))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func unquote(v string) string {
	if len(v) >= 2 && (v[0] == '"' || v[0] == '\'') && v[len(v)-1] == v[0] {
		return v[1 : len(v)-1]
	}
	return v
}

// LoadDotEnv sets variables from the file at path that are not already
// set. A missing file is not an error.
func LoadDotEnv(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("cannot open dotenv file %s: %w", path, err)
	}
	defer f.Close()

	values, err := ParseDotEnv(f)
	if err != nil {
		return fmt.Errorf("cannot read dotenv file %s: %w", path, err)
	}
	for k, v := range values {
		if _, ok := os.LookupEnv(k); ok {
			continue
		}
		if err := os.Setenv(k, v); err != nil {
			return err
		}
	}
	return nil
}
