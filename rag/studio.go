package rag

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/fwojciec/animgen"
)

// GenerateRequest describes one question-to-script run.
type GenerateRequest struct {
	Query string

	// NoElaborate skips the elaboration call.
	NoElaborate bool

	// Wrap guards scene calls with try/except in the written script.
	Wrap bool

	// Render runs the renderer on the written script.
	Render        bool
	RenderOptions animgen.RenderOptions

	// FileName overrides the name derived from the query.
	FileName string
}

// GenerateResult is the outcome of Studio.Generate.
type GenerateResult struct {
	Generation  *animgen.Generation
	Code        string
	Prompt      string
	Context     []animgen.SearchResult
	Suggestions []string
	Render      *animgen.RenderResult
}

// Studio turns questions into animation scripts.
type Studio struct {
	Retriever animgen.Retriever
	Generator animgen.Generator
	Symbols   animgen.SymbolSource
	Prompts   *animgen.PromptBuilder
	Writer    animgen.CodeWriter

	// Optional collaborators.
	Renderer animgen.Renderer
	History  animgen.GenerationService
	Tokens   animgen.TokenCounter

	TopK     int
	MinScore float32

	Logger *slog.Logger
}

// Generate retrieves documentation for the query, asks the model for a
// scene, cleans and writes the script, and optionally renders it.
//
// Elaboration failures degrade to a prompt without elaboration; code
// generation failures degrade to the fallback scene. Retrieval, writing
// and cancellation errors are returned.
func (s *Studio) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	begin := time.Now()
	logger := s.logger()

	query := strings.TrimSpace(req.Query)
	suggestions, err := animgen.ValidateQuery(query)
	if err != nil {
		return nil, err
	}
	if len(suggestions) > 0 {
		logger.Info("query may not animate well", "suggestions", suggestions)
	}

	results, err := s.Retriever.Retrieve(ctx, query, animgen.SearchOptions{Limit: s.TopK, MinScore: s.MinScore})
	if err != nil {
		return nil, err
	}
	docContext := animgen.FormatContext(results)

	symbols, err := s.Symbols.Symbols(ctx)
	if err != nil {
		logger.Warn("cannot load symbols, using fallback list", "err", err)
		symbols = animgen.FallbackSymbols()
	}

	var elaboration string
	if !req.NoElaborate {
		elaboration, err = s.Generator.Generate(ctx, animgen.ElaborationPrompt(query), animgen.GenerateOptions{})
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("elaboration failed, continuing without it", "err", err)
			elaboration = ""
		}
	}

	prompts := s.Prompts
	if prompts == nil {
		prompts = animgen.NewPromptBuilder()
	}
	prompt := prompts.CodePrompt(animgen.PromptInput{
		Query:       query,
		Elaboration: elaboration,
		Context:     docContext,
		Symbols:     symbols,
	})
	if s.Tokens != nil {
		if n, err := s.Tokens.CountTokens(ctx, prompt); err == nil {
			logger.Info("prompt assembled", "tokens", n, "chars", len(prompt))
		} else {
			logger.Debug("cannot count prompt tokens", "err", err)
		}
	}

	fallback := false
	var code string
	raw, err := s.Generator.Generate(ctx, prompt, animgen.CodeOptions())
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		logger.Warn("code generation failed, writing fallback scene", "err", err)
		code = animgen.FallbackScene(query)
		fallback = true
	} else {
		code = animgen.CleanCode(raw, req.Wrap)
	}

	className, err := animgen.ClassName(code)
	if err != nil {
		logger.Warn("no scene class found in generated code")
	}

	name := req.FileName
	if name == "" {
		name = animgen.OutputFileName(query)
	}
	path, err := s.Writer.WriteCode(ctx, name, code)
	if err != nil {
		return nil, err
	}

	gen := &animgen.Generation{
		Query:      query,
		Model:      s.Generator.Model(),
		FilePath:   path,
		ClassName:  className,
		Elaborated: elaboration != "",
		Fallback:   fallback,
	}
	result := &GenerateResult{
		Generation:  gen,
		Code:        code,
		Prompt:      prompt,
		Context:     results,
		Suggestions: suggestions,
	}

	if req.Render {
		switch {
		case s.Renderer == nil:
			gen.RenderError = "no renderer configured"
		case className == "":
			gen.RenderError = "no scene class found"
		default:
			rendered, err := s.Renderer.Render(ctx, path, className, req.RenderOptions)
			result.Render = rendered
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				gen.RenderError = animgen.ErrorMessage(err)
				logger.Warn("render failed", "file", path, "class", className, "err", err)
			} else {
				gen.Rendered = true
				gen.OutputFiles = rendered.OutputFiles
			}
		}
	}

	gen.Duration = time.Since(begin)
	if s.History != nil {
		if err := s.History.CreateGeneration(ctx, gen); err != nil {
			logger.Warn("cannot record generation", "err", err)
		}
	}
	return result, nil
}

func (s *Studio) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.Logger
}
