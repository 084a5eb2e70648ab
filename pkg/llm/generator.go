// Package llm defines the text generation interface the answer engine
// depends on, with providers under llm/ollama and llm/openai.
package llm

import (
	"context"
	"errors"
)

// ErrGeneration indicates the language model failed to produce a
// completion. The caller surfaces it without retrying.
var ErrGeneration = errors.New("llm: generation failed")

// Generator produces a completion for a prompt. Temperature follows
// the usual convention: 0 for deterministic output.
type Generator interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
	Close() error
}
