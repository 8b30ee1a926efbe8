package animgen

import (
	"fmt"
	"strings"
)

// DefaultMaxContextChars caps the retrieved documentation placed in a prompt.
const DefaultMaxContextChars = 2000

// ElaborationMarker ends every elaborated prompt so the documentation
// context can follow it directly.
const ElaborationMarker = "Here is some documentation about Manim:"

// ElaborationPrompt asks the model to expand a short question into a
// detailed animation brief for the code generation call.
func ElaborationPrompt(query string) string {
	return fmt.Sprintf(`Create an extremely detailed explanation of %q, and in that explanation add details for animating it with Manim, so that it can be passed into another LLM instance.
The explanation needs to make the LLM generate code that creates a hyper-specific animation. Make sure to tell it to use primitive types from the actual Manim library, and to not hallucinate anything.
End your full response with %q`, query, ElaborationMarker)
}

// PromptInput holds the parts of a code generation prompt.
type PromptInput struct {
	Query string

	// Elaboration is the model-written brief. Empty when elaboration was
	// skipped or failed.
	Elaboration string

	// Context is the retrieved documentation text.
	Context string

	Symbols []*Symbol
}

// PromptBuilder assembles code generation prompts.
type PromptBuilder struct {
	MaxContextChars int
	MaxSymbolChars  int
}

// NewPromptBuilder returns a PromptBuilder with default limits.
func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{
		MaxContextChars: DefaultMaxContextChars,
		MaxSymbolChars:  DefaultMaxSymbolChars,
	}
}

// CodePrompt builds the prompt that asks for the animation script.
func (b *PromptBuilder) CodePrompt(in PromptInput) string {
	context := in.Context
	if b.MaxContextChars > 0 {
		if runes := []rune(context); len(runes) > b.MaxContextChars {
			context = string(runes[:b.MaxContextChars])
		}
	}

	var sb strings.Builder
	if elaboration := strings.TrimSpace(in.Elaboration); elaboration != "" {
		sb.WriteString(elaboration)
		if !strings.HasSuffix(elaboration, ElaborationMarker) {
			sb.WriteString("\n\n")
			sb.WriteString(ElaborationMarker)
		}
		sb.WriteString("\n")
	} else {
		fmt.Fprintf(&sb, "You are a Manim animation expert. Create a Python animation for: %q\n\n", in.Query)
		sb.WriteString("Manim Documentation Context:\n")
	}
	sb.WriteString(context)
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, `IMPORTANT RULES:
1. Use ONLY these Manim classes and methods:
%s
2. Do NOT use any classes or methods not listed above. Do not hallucinate types.
3. Keep the animation simple, focused, and always visible within the frame.
4. Use `+"`MovingCameraScene`"+` to control the view and ensure all elements are visible.
5. Position objects relative to each other (e.g., `+"`object2.next_to(object1, DOWN)`"+`) or centered on the screen. Avoid large absolute coordinates like `+"`shift(DOWN*5)`"+`.
6. At the start of the animation, you can use `+"`self.camera.frame.scale(1.2)`"+` to zoom out slightly if many objects are on screen.
7. The background color is set to white by external configuration, so do NOT draw anything in white.
8. Make sure things do not overlap unless they are meant to.

Create a Python script with:
- A single class that inherits from `+"`MovingCameraScene`"+`.
- A `+"`construct()`"+` method that creates animations that stay within the frame.
- No explanations, just code.

Return ONLY the Python code, no markdown formatting.`, FormatSymbols(in.Symbols, b.MaxSymbolChars))

	return sb.String()
}

// Query length limits, in characters.
const (
	MinQueryLength = 3
	MaxQueryLength = 200
)

var animationKeywords = []string{
	"sort", "algorithm", "data structure", "graph", "tree", "matrix", "vector",
	"function", "equation", "geometry", "physics", "chemistry", "biology",
	"process", "flow", "diagram", "visualization", "animation", "show", "demonstrate",
}

// ValidateQuery checks that a question can be turned into an animation.
// It returns suggestions for queries that are valid but unlikely to
// produce a good animation.
func ValidateQuery(query string) ([]string, error) {
	trimmed := strings.TrimSpace(query)
	if len([]rune(trimmed)) < MinQueryLength {
		return nil, Errorf(EINVALID, "query must be at least %d characters long", MinQueryLength)
	}
	if len([]rune(query)) > MaxQueryLength {
		return nil, Errorf(EINVALID, "query is too long (max %d characters)", MaxQueryLength)
	}

	lower := strings.ToLower(query)
	for _, keyword := range animationKeywords {
		if strings.Contains(lower, keyword) {
			return nil, nil
		}
	}
	return []string{
		`Try adding words like "show", "demonstrate", or "visualize"`,
		"Consider specifying what you want to animate",
		`Use terms like "algorithm", "process", or "diagram"`,
	}, nil
}

// Templates returns example questions that animate well.
func Templates() []string {
	return []string{
		"What is merge sort?",
		"How does bubble sort work?",
		"Explain matrix multiplication",
		"What is the x-y plane?",
		"Show me a DNA double helix",
		"Demonstrate binary search",
		"Visualize a linked list",
		"Show graph traversal algorithms",
	}
}
