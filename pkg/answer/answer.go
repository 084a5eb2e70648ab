// Package answer turns retrieved chunks into a grounded answer with
// the sources that produced it.
package answer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/foliolabs/folio/pkg/llm"
	"github.com/foliolabs/folio/pkg/vector"
)

// ErrInsufficientContext indicates no chunks were retrieved for the
// question, so no grounded answer is possible.
var ErrInsufficientContext = errors.New("answer: no relevant context retrieved")

// promptTemplate instructs the model to answer only from the supplied
// context and to admit when the context does not contain the answer.
const promptTemplate = `Use the following pieces of context to answer the question at the end. If you don't know the answer from the context, just say that you don't know, don't try to make up an answer.

%s

Question: %s
Helpful Answer:`

// Answer is a generated answer together with the chunks it was
// grounded on, in retrieval order.
type Answer struct {
	Text    string
	Sources []vector.SearchResult
}

// Engine assembles prompts from retrieved chunks and generates answers.
type Engine struct {
	generator   llm.Generator
	temperature float64
	logger      *zap.Logger
}

func NewEngine(generator llm.Generator, temperature float64, logger *zap.Logger) *Engine {
	return &Engine{
		generator:   generator,
		temperature: temperature,
		logger:      logger,
	}
}

// Answer generates a grounded answer to the question from the given
// chunks. Returns ErrInsufficientContext when chunks is empty and
// wraps llm.ErrGeneration on model failure. Generation is not retried.
func (e *Engine) Answer(ctx context.Context, question string, chunks []vector.SearchResult) (*Answer, error) {
	if len(chunks) == 0 {
		return nil, ErrInsufficientContext
	}

	prompt := buildPrompt(question, chunks)

	e.logger.Debug("generating answer",
		zap.Int("context_chunks", len(chunks)),
		zap.Int("prompt_length", len(prompt)),
	)

	text, err := e.generator.Generate(ctx, prompt, e.temperature)
	if err != nil {
		return nil, fmt.Errorf("generating answer: %w", err)
	}

	return &Answer{
		Text:    strings.TrimSpace(text),
		Sources: chunks,
	}, nil
}

// buildPrompt stuffs the chunk texts, in order, into the prompt
// template.
func buildPrompt(question string, chunks []vector.SearchResult) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return fmt.Sprintf(promptTemplate, strings.Join(texts, "\n\n"), question)
}
