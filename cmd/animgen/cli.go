package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/animgen"
	"github.com/fwojciec/animgen/mirror"
	"github.com/fwojciec/animgen/rag"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	Mirror    *mirror.Mirror
	Indexer   *rag.Indexer
	Retriever animgen.Retriever
	Studio    *rag.Studio
	Renderer  animgen.Renderer
	Symbols   animgen.SymbolSource
	History   animgen.GenerationService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Globals

	Mirror    MirrorCmd    `cmd:"" help:"Mirror a documentation site to local HTML files"`
	Index     IndexCmd     `cmd:"" help:"Extract, chunk and embed the mirrored documentation"`
	Search    SearchCmd    `cmd:"" help:"Show the documentation retrieved for a question"`
	Generate  GenerateCmd  `cmd:"" help:"Generate an animation script for a question"`
	Render    RenderCmd    `cmd:"" help:"Render a generated script with manim"`
	Symbols   SymbolsCmd   `cmd:"" help:"Print the symbol whitelist given to the model"`
	History   HistoryCmd   `cmd:"" help:"List past generations"`
	Stats     StatsCmd     `cmd:"" help:"Summarize past generations"`
	Templates TemplatesCmd `cmd:"" help:"List example questions that animate well"`
	Validate  ValidateCmd  `cmd:"" help:"Check a question before generating"`
}

// Globals are flags shared by every command.
type Globals struct {
	Config kong.ConfigFlag `help:"YAML configuration file" placeholder:"FILE"`

	DocsDir    string `default:"manim_docs" env:"ANIMGEN_DOCS_DIR" help:"Directory of mirrored HTML documentation"`
	CacheDir   string `default:".animgen" env:"ANIMGEN_CACHE_DIR" help:"Directory for page and chunk caches"`
	DB         string `name:"db" env:"ANIMGEN_DB" help:"SQLite database path (default: <cache-dir>/animgen.db)"`
	OutputDir  string `default:"generated_animation_code" env:"ANIMGEN_OUTPUT_DIR" help:"Directory for generated scripts"`
	SymbolsDir string `default:"." env:"ANIMGEN_SYMBOLS_DIR" help:"Directory holding the symbol files"`

	Provider       string `default:"gemini" enum:"gemini,openai" env:"ANIMGEN_PROVIDER" help:"Model provider (gemini, openai)"`
	EmbeddingModel string `env:"ANIMGEN_EMBEDDING_MODEL" help:"Embedding model (default depends on the provider)"`

	LogLevel string `default:"warn" enum:"debug,info,warn,error" env:"ANIMGEN_LOG_LEVEL" help:"Log level (debug, info, warn, error)"`
	LogFile  string `type:"path" env:"ANIMGEN_LOG_FILE" help:"Also write JSON logs to this file"`
}

// MirrorCmd is the "mirror" subcommand.
type MirrorCmd struct {
	URL         string        `arg:"" help:"Documentation URL"`
	Dir         string        `arg:"" optional:"" help:"Target directory (default: --docs-dir)"`
	Preview     bool          `short:"p" help:"List the URLs without downloading"`
	JS          bool          `name:"js" help:"Always render pages in a headless browser"`
	NoJS        bool          `name:"no-js" help:"Never start a browser"`
	Include     []string      `short:"i" help:"Only mirror URLs matching this regex (repeatable)"`
	Exclude     []string      `short:"x" help:"Skip URLs matching this regex (repeatable)"`
	Concurrency int           `short:"c" default:"5" help:"Concurrent fetch limit"`
	MaxPages    int           `default:"1000" help:"Maximum number of pages"`
	RPS         float64       `name:"rps" default:"5" help:"Requests per second per domain"`
	Timeout     time.Duration `short:"t" default:"10s" help:"Fetch timeout per page"`
}

// IndexCmd is the "index" subcommand.
type IndexCmd struct {
	Force       bool          `short:"f" help:"Discard caches and re-embed everything"`
	Extractor   string        `default:"goquery" enum:"goquery,trafilatura,readability" help:"Main-content extractor (goquery, trafilatura, readability)"`
	Format      string        `default:"text" enum:"text,markdown" help:"Page text format (text, markdown)"`
	ChunkSize   int           `default:"1000" help:"Maximum chunk length in characters"`
	Overlap     int           `default:"150" help:"Characters shared by consecutive chunks"`
	BatchSize   int           `default:"100" help:"Chunks per embedding request"`
	Concurrency int           `short:"c" default:"4" help:"Embedding requests in flight"`
	RPS         float64       `name:"rps" default:"0" help:"Embedding requests per second (0: unlimited)"`
	LockTimeout time.Duration `default:"30s" help:"How long to wait for another index build"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query    string  `arg:"" help:"Question to search for"`
	TopK     int     `short:"k" default:"4" help:"Number of chunks to show"`
	MinScore float32 `default:"0" help:"Minimum similarity score"`
	Full     bool    `help:"Show full chunk text"`
}

// GenerateCmd is the "generate" subcommand.
type GenerateCmd struct {
	Query       string  `arg:"" help:"Question to animate"`
	Model       string  `short:"m" env:"ANIMGEN_MODEL" help:"Generation model (default depends on the provider)"`
	NoElaborate bool    `help:"Skip the elaboration call"`
	Wrap        bool    `help:"Guard scene calls with try/except"`
	TopK        int     `short:"k" default:"4" help:"Number of documentation chunks in the prompt"`
	MinScore    float32 `default:"0" help:"Minimum similarity score for retrieved chunks"`
	FileName    string  `short:"o" help:"Output file name (default: derived from the question)"`
	ShowPrompt  bool    `help:"Print the assembled prompt"`

	RenderFlags `embed:""`
	Render      bool `short:"r" help:"Render the script after writing it"`
}

// RenderFlags configure the manim subprocess.
type RenderFlags struct {
	Quality       string        `short:"q" default:"l" enum:"l,m,h,p,k" help:"Render quality (l, m, h, p, k)"`
	Preview       bool          `short:"p" help:"Open the result when rendering finishes"`
	ManimConfig   string        `type:"path" help:"manim configuration file"`
	Python        string        `default:"python3" env:"ANIMGEN_PYTHON" help:"Python interpreter with manim installed"`
	RenderTimeout time.Duration `default:"60s" help:"Render timeout"`
}

func (f RenderFlags) options() animgen.RenderOptions {
	return animgen.RenderOptions{Quality: f.Quality, Preview: f.Preview, ConfigFile: f.ManimConfig}
}

// RenderCmd is the "render" subcommand.
type RenderCmd struct {
	File  string `arg:"" type:"existingfile" help:"Generated script"`
	Class string `arg:"" optional:"" help:"Scene class (default: first class in the file)"`
	ID    string `help:"Generation ID to record the outcome on"`

	RenderFlags `embed:""`
}

// SymbolsCmd is the "symbols" subcommand.
type SymbolsCmd struct {
	Max int `default:"10000" help:"Truncate the list to this many characters (0: no limit)"`
}

// HistoryCmd is the "history" subcommand.
type HistoryCmd struct {
	ID     string `arg:"" optional:"" help:"Show a single generation"`
	Query  string `short:"q" help:"Only generations whose question contains this text"`
	Limit  int    `short:"n" default:"20" help:"Number of generations to list"`
	Offset int    `help:"Skip this many generations"`
}

// StatsCmd is the "stats" subcommand.
type StatsCmd struct {
	Popular int `default:"5" help:"Number of popular questions to list"`
}

// TemplatesCmd is the "templates" subcommand.
type TemplatesCmd struct{}

// ValidateCmd is the "validate" subcommand.
type ValidateCmd struct {
	Query string `arg:"" help:"Question to check"`
}

// report prints err the way every command does and returns it.
func report(deps *Dependencies, err error) error {
	fmt.Fprintf(deps.Stderr, "error: %s\n", animgen.ErrorMessage(err))
	if animgen.ErrorCode(err) == animgen.EINTERNAL && deps.Logger != nil {
		deps.Logger.Error("command failed", "err", err)
	}
	return err
}
