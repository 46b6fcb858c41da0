package llm

import (
	"context"
)

// LLMClient is opaque text-in/text-out; callers independently validate and
// parse any structured output they expect back.
type LLMClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// EmbedderClient turns text into a fixed-length vector.
type EmbedderClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
