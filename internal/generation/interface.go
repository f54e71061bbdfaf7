// Package generation wraps the text-generation services the summarizer can
// use. Every failure is returned as a *failure.Error carrying the upstream
// classification.
package generation

import "context"

// Params bounds generation length and sampling
type Params struct {
	MaxTokens   int
	Temperature float64
	TopP        float64
}

// Generator produces a single text completion for a prompt
type Generator interface {
	Generate(ctx context.Context, prompt string, params Params) (string, error)
}
