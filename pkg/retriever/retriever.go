package retriever

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/foliolabs/folio/pkg/embeddings"
	"github.com/foliolabs/folio/pkg/vector"
)

// DefaultTopK is the number of chunks retrieved per question when the
// caller does not specify one.
const DefaultTopK = 3

// Retriever embeds a question and finds the chunks most similar to it
// in a single document's index.
type Retriever struct {
	embedder embeddings.Embedder
	topK     int
	logger   *zap.Logger
}

func NewRetriever(embedder embeddings.Embedder, topK int, logger *zap.Logger) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		embedder: embedder,
		topK:     topK,
		logger:   logger,
	}
}

// Retrieve returns the top chunks of idx ranked by similarity to the
// question, best first. An empty index yields an empty result, not an
// error.
func (r *Retriever) Retrieve(ctx context.Context, idx vector.Index, question string) ([]vector.SearchResult, error) {
	if idx.Count() == 0 {
		return nil, nil
	}

	embedding, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	results, err := idx.Search(ctx, embedding, r.topK)
	if err != nil {
		return nil, fmt.Errorf("searching index %q: %w", idx.DocumentID(), err)
	}

	r.logger.Debug("retrieved chunks",
		zap.String("document_id", idx.DocumentID()),
		zap.Int("count", len(results)),
	)

	return results, nil
}
