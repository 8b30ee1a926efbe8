package main_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	main "github.com/fwojciec/animgen/cmd/animgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type configuredCLI struct {
	TopK    int      `default:"4" env:"ANIMGEN_CONFIG_TEST_TOP_K"`
	DocsDir string   `default:"manim_docs"`
	Exclude []string `help:"patterns"`
}

func parseWithConfig(t *testing.T, yaml string, args ...string) *configuredCLI {
	t.Helper()

	resolver, err := main.YAMLConfig(strings.NewReader(yaml))
	require.NoError(t, err)

	cli := &configuredCLI{}
	parser, err := kong.New(cli, kong.Resolvers(resolver), kong.Exit(func(int) {}))
	require.NoError(t, err)

	_, err = parser.Parse(args)
	require.NoError(t, err)
	return cli
}

func TestYAMLConfig(t *testing.T) {
	t.Parallel()

	t.Run("file overrides defaults", func(t *testing.T) {
		t.Parallel()

		cli := parseWithConfig(t, "top_k: 6\ndocs-dir: docs\nexclude: [\"/api/\", \"/changelog/\"]\n")

		assert.Equal(t, 6, cli.TopK)
		assert.Equal(t, "docs", cli.DocsDir)
		assert.Equal(t, []string{"/api/", "/changelog/"}, cli.Exclude)
	})

	t.Run("flags override the file", func(t *testing.T) {
		t.Parallel()

		cli := parseWithConfig(t, "top_k: 6\n", "--top-k", "8")

		assert.Equal(t, 8, cli.TopK)
	})

	t.Run("empty file keeps defaults", func(t *testing.T) {
		t.Parallel()

		cli := parseWithConfig(t, "")

		assert.Equal(t, 4, cli.TopK)
		assert.Equal(t, "manim_docs", cli.DocsDir)
	})

	t.Run("invalid YAML is an error", func(t *testing.T) {
		t.Parallel()

		_, err := main.YAMLConfig(strings.NewReader("top_k: [\n"))

		assert.Error(t, err)
	})
}

func TestYAMLConfig_EnvironmentWins(t *testing.T) {
	t.Setenv("ANIMGEN_CONFIG_TEST_TOP_K", "7")

	cli := parseWithConfig(t, "top_k: 6\n")

	assert.Equal(t, 7, cli.TopK)
}

func TestParseDotEnv(t *testing.T) {
	t.Parallel()

	input := `# API keys
GEMINI_API_KEY=abc123
export OPENAI_BASE_URL = http://localhost:1234/v1

QUOTED="with spaces"
SINGLE='x=y'
not a pair
=novalue
EMPTY=
`
	values, err := main.ParseDotEnv(strings.NewReader(input))

	require.NoError(t, err)
	assert.Equal(t, map[string]string{
		"GEMINI_API_KEY":  "abc123",
		"OPENAI_BASE_URL": "http://localhost:1234/v1",
		"QUOTED":          "with spaces",
		"SINGLE":          "x=y",
		"EMPTY":           "",
	}, values)
}

func TestLoadDotEnv(t *testing.T) {
	t.Run("sets missing variables only", func(t *testing.T) {
		t.Setenv("ANIMGEN_DOTENV_TEST_SET", "from-env")

		path := filepath.Join(t.TempDir(), ".env")
		require.NoError(t, os.WriteFile(path, []byte(
			"ANIMGEN_DOTENV_TEST_SET=from-file\nANIMGEN_DOTENV_TEST_NEW=from-file\n"), 0o600))
		t.Cleanup(func() { _ = os.Unsetenv("ANIMGEN_DOTENV_TEST_NEW") })

		require.NoError(t, main.LoadDotEnv(path))

		assert.Equal(t, "from-env", os.Getenv("ANIMGEN_DOTENV_TEST_SET"))
		assert.Equal(t, "from-file", os.Getenv("ANIMGEN_DOTENV_TEST_NEW"))
	})

	t.Run("missing file is ignored", func(t *testing.T) {
		err := main.LoadDotEnv(filepath.Join(t.TempDir(), "absent.env"))

		assert.NoError(t, err)
	})
}
