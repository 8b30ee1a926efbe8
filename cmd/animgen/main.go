package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/animgen"
	"github.com/fwojciec/animgen/fs"
	"github.com/fwojciec/animgen/gemini"
	"github.com/fwojciec/animgen/goquery"
	"github.com/fwojciec/animgen/htmltomarkdown"
	animhttp "github.com/fwojciec/animgen/http"
	"github.com/fwojciec/animgen/manim"
	"github.com/fwojciec/animgen/mirror"
	"github.com/fwojciec/animgen/openai"
	"github.com/fwojciec/animgen/rag"
	"github.com/fwojciec/animgen/readability"
	"github.com/fwojciec/animgen/rod"
	animslog "github.com/fwojciec/animgen/slog"
	"github.com/fwojciec/animgen/sqlite"
	"github.com/fwojciec/animgen/trafilatura"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	m := NewMain()

	err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// ConfigPaths are YAML files read when present. Set before calling Run().
	ConfigPaths []string

	// DotEnvPath is loaded into the environment before parsing; empty
	// skips it.
	DotEnvPath string

	// Getenv reads API keys.
	Getenv func(string) string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	closers []io.Closer
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		ConfigPaths: []string{DefaultConfigPath},
		DotEnvPath:  DefaultDotEnvPath,
		Getenv:      os.Getenv,
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	var errs []error
	for i := len(m.closers) - 1; i >= 0; i-- {
		errs = append(errs, m.closers[i].Close())
	}
	m.closers = nil
	if m.DB != nil {
		errs = append(errs, m.DB.Close())
		m.DB = nil
	}
	return errors.Join(errs...)
}

// Run executes the CLI with the given arguments. Errors are printed to
// stderr before being returned.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if m.DotEnvPath != "" {
		if err := LoadDotEnv(m.DotEnvPath); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return err
		}
	}

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("animgen"),
		kong.Description("Generate Manim animation scripts from questions, grounded in the Manim documentation"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Configuration(YAMLConfig, m.ConfigPaths...),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		err := fmt.Errorf("no command specified. Run 'animgen --help' to see available commands")
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}

	if cmd := args[0]; cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return err
	}

	logger, err := m.newLogger(cli.Globals, stderr)
	if err != nil {
		fmt.Fprintf(stderr, "error: %s\n", animgen.ErrorMessage(err))
		return err
	}
	deps.Logger = logger
	defer m.Close()

	if err := m.wire(ctx, commandName(kongCtx), cli, deps); err != nil {
		return report(deps, err)
	}

	return kongCtx.Run(deps)
}

// commandName returns the first word of the selected command path, e.g.
// "generate" for "generate <query>".
func commandName(ctx *kong.Context) string {
	fields := strings.Fields(ctx.Command())
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func (m *Main) newLogger(g Globals, stderr io.Writer) (*slog.Logger, error) {
	level, err := animslog.ParseLevel(g.LogLevel)
	if err != nil {
		return nil, err
	}

	var file io.Writer
	if g.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(g.LogFile), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(g.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, animgen.Errorf(animgen.EINVALID, "cannot open log file %s: %v", g.LogFile, err)
		}
		m.closers = append(m.closers, f)
		file = f
	}
	return animslog.NewLogger(stderr, file, level), nil
}

// wire builds the services the selected command needs.
func (m *Main) wire(ctx context.Context, cmd string, cli *CLI, deps *Dependencies) error {
	g := cli.Globals
	logger := deps.Logger

	switch cmd {
	case "mirror":
		return m.wireMirror(ctx, cli, deps)
	case "symbols":
		deps.Symbols = fs.NewSymbolSource(g.SymbolsDir, logger)
		return nil
	case "index", "search", "generate", "render", "history", "stats":
	default:
		return nil
	}

	if err := m.openDB(g); err != nil {
		return err
	}
	history := sqlite.NewGenerationService(m.DB)
	index := sqlite.NewChunkIndex(m.DB)
	deps.History = history

	switch cmd {
	case "render":
		deps.Renderer = newRenderer(cli.Render.RenderFlags, logger)
		return nil
	case "history", "stats":
		return nil
	}

	p, err := newProvider(ctx, g, cli.Generate.Model, m.Getenv, logger)
	if err != nil {
		return err
	}
	embedder := animslog.NewLoggingEmbedder(rag.WithEmbedRetry(p.embedder, logger), logger)
	retriever := rag.NewRetriever(embedder, index)
	deps.Retriever = animslog.NewLoggingRetriever(retriever, logger)

	switch cmd {
	case "index":
		deps.Indexer = newIndexer(cli.Index, g, embedder, index, logger)
	case "generate":
		deps.Renderer = newRenderer(cli.Generate.RenderFlags, logger)
		deps.Studio = &rag.Studio{
			Retriever: deps.Retriever,
			Generator: animslog.NewLoggingGenerator(rag.WithRetry(p.generator, logger), logger),
			Symbols:   fs.NewSymbolSource(g.SymbolsDir, logger),
			Prompts:   animgen.NewPromptBuilder(),
			Writer:    fs.NewCodeWriter(g.OutputDir),
			Renderer:  deps.Renderer,
			History:   history,
			Tokens:    p.tokens,
			TopK:      cli.Generate.TopK,
			MinScore:  cli.Generate.MinScore,
			Logger:    logger,
		}
	}
	return nil
}

func (m *Main) openDB(g Globals) error {
	path := g.DB
	if path == "" {
		path = filepath.Join(g.CacheDir, "animgen.db")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	m.DB = sqlite.NewDB(path)
	if err := m.DB.Open(); err != nil {
		m.DB = nil
		return animgen.Errorf(animgen.EUNAVAILABLE, "cannot open database at %q (set --db or ANIMGEN_DB): %v", path, err)
	}
	return nil
}

func (m *Main) wireMirror(ctx context.Context, cli *CLI, deps *Dependencies) error {
	c := cli.Mirror
	logger := deps.Logger

	dir := c.Dir
	if dir == "" {
		dir = cli.DocsDir
	}
	dir = filepath.Clean(dir)

	detector := goquery.NewDetector()
	plain := animslog.NewLoggingFetcher(animhttp.NewFetcher(animhttp.WithTimeout(c.Timeout)), logger)

	var fetcher animgen.Fetcher = plain
	if !c.NoJS {
		browser, err := rod.NewFetcher(rod.WithFetchTimeout(c.Timeout))
		switch {
		case err != nil && c.JS:
			fmt.Fprintln(deps.Stderr, "Hint: Chrome or Chromium must be installed")
			return err
		case err != nil:
			logger.Warn("no browser available, fetching without JavaScript", "err", err)
		case c.JS:
			m.closers = append(m.closers, browser)
			fetcher = animslog.NewLoggingFetcher(browser, logger)
		default:
			m.closers = append(m.closers, browser)
			fetcher = mirror.ChooseFetcher(ctx, c.URL, plain, browser, detector, goquery.NewExtractor(), logger)
			if fetcher == browser {
				fetcher = animslog.NewLoggingFetcher(browser, logger)
			}
		}
	}

	deps.Mirror = &mirror.Mirror{
		Sitemaps:    animslog.NewLoggingSitemapService(animhttp.NewSitemapService(nil), logger),
		Fetcher:     fetcher,
		Store:       fs.NewHTMLStore(filepath.Dir(dir), filepath.Base(dir)),
		Links:       goquery.NewLinkExtractor(),
		Limiter:     mirror.NewDomainLimiter(c.RPS),
		Concurrency: c.Concurrency,
		MaxPages:    c.MaxPages,
		Logger:      logger,
	}
	return nil
}

func newIndexer(c IndexCmd, g Globals, embedder animgen.Embedder, index animgen.ChunkIndex, logger *slog.Logger) *rag.Indexer {
	var extractor animgen.Extractor
	switch c.Extractor {
	case "trafilatura":
		extractor = trafilatura.NewExtractor()
	case "readability":
		extractor = readability.NewExtractor()
	default:
		extractor = goquery.NewExtractor()
	}
	extractor = animslog.NewLoggingExtractor(extractor, goquery.NewDetector(), logger)

	var converter animgen.Converter = goquery.NewTextConverter()
	if c.Format == "markdown" {
		converter = htmltomarkdown.NewConverter()
	}

	cache := fs.NewCache(g.CacheDir)
	ix := &rag.Indexer{
		Pages:    fs.NewPageSource(g.DocsDir, extractor, converter),
		Cache:    cache,
		Splitter: &animgen.Splitter{ChunkSize: c.ChunkSize, ChunkOverlap: c.Overlap, Separators: animgen.DefaultSeparators},
		Embedder: embedder,
		Index:    index,
		Lock: func(ctx context.Context) (func(), error) {
			return fs.AcquireLock(ctx, cache.LockPath(), c.LockTimeout)
		},
		BatchSize:   c.BatchSize,
		Concurrency: c.Concurrency,
		Logger:      logger,
	}
	if c.RPS > 0 {
		ix.Limiter = rate.NewLimiter(rate.Limit(c.RPS), 1)
	}
	return ix
}

func newRenderer(f RenderFlags, logger *slog.Logger) animgen.Renderer {
	r := manim.NewRenderer(f.Python)
	if f.RenderTimeout > 0 {
		r.Timeout = f.RenderTimeout
	}
	return animslog.NewLoggingRenderer(r, logger)
}

// provider bundles the model clients of one API.
type provider struct {
	generator animgen.Generator
	embedder  animgen.Embedder
	tokens    animgen.TokenCounter
}

func newProvider(ctx context.Context, g Globals, model string, getenv func(string) string, logger *slog.Logger) (*provider, error) {
	switch g.Provider {
	case "openai":
		baseURL := getenv("OPENAI_BASE_URL")
		apiKey := getenv("OPENAI_API_KEY")
		if apiKey == "" && baseURL == "" {
			return nil, animgen.Errorf(animgen.EINVALID, "OPENAI_API_KEY not set (or set OPENAI_BASE_URL for a local server)")
		}
		client := openai.NewClient(baseURL, apiKey)
		return &provider{
			generator: openai.NewGenerator(client, model),
			embedder:  openai.NewEmbedder(client, g.EmbeddingModel),
		}, nil

	default:
		apiKey := getenv("GOOGLE_API_KEY")
		if apiKey == "" {
			apiKey = getenv("GEMINI_API_KEY")
		}
		if apiKey == "" {
			return nil, animgen.Errorf(animgen.EINVALID, "GOOGLE_API_KEY or GEMINI_API_KEY not set. Get a key at https://aistudio.google.com/apikey")
		}
		client, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, animgen.Errorf(animgen.EUNAVAILABLE, "cannot connect to the Gemini API: %v", err)
		}

		p := &provider{
			generator: gemini.NewGenerator(client, model),
			embedder:  gemini.NewEmbedder(client, g.EmbeddingModel),
		}
		if tc, err := gemini.NewTokenCounter(p.generator.Model()); err == nil {
			p.tokens = tc
		} else {
			logger.Debug("token counting disabled", "err", err)
		}
		return p, nil
	}
}

// elapsed formats a duration for command output.
func elapsed(d time.Duration) string {
	return d.Round(10 * time.Millisecond).String()
}
