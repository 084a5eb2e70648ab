// Package embeddings
package embeddings

import "context"

// Embedder provides text embedding capabilities. Index build and query
// must go through the same Embedder: mixing embedding spaces between
// build time and query time silently breaks retrieval.
type Embedder interface {
	// Embed converts text into a vector embedding.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch converts a batch of texts into vector embeddings,
	// one per input, order-preserving.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Close releases any resources held by the embedder.
	Close() error
}
