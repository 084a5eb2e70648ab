// Package vector provides interfaces and implementations for per-document
// vector index storage and nearest-neighbor search.
package vector

import "context"

// Chunk is a bounded contiguous slice of a document's text used as the
// unit of retrieval. Immutable once created.
type Chunk struct {
	// DocumentID identifies the owning document.
	DocumentID string

	// ChunkID is a dense 0-based sequence number assigned at chunking
	// time, following source order.
	ChunkID int

	// Text is the chunk's text content.
	Text string

	// Embedding is the vector representation of Text.
	Embedding []float32
}

// SearchResult is a chunk paired with its relevance score
// (higher = more similar).
type SearchResult struct {
	Chunk

	Score float32
}

// Index is a read-only handle over one document's built vector index.
// Search is safe for concurrent use.
type Index interface {
	// DocumentID returns the id of the document this index covers.
	DocumentID() string

	// Count returns the number of chunks recorded at build time.
	Count() int

	// Search returns the topK chunks whose embeddings are nearest to
	// the query embedding under cosine similarity, ranked descending,
	// ties broken by ascending chunk id.
	Search(ctx context.Context, embedding []float32, topK int) ([]SearchResult, error)

	// Close releases resources held by the handle.
	Close() error
}

// Store builds, loads, and deletes per-document indexes. Exactly one
// index exists per document at any time; Build replaces any prior index
// wholesale.
type Store interface {
	// Build persists a new index for documentID from the given chunks
	// (already embedded) and returns a handle over it. A failed build
	// must never leave a partial index discoverable by Load.
	Build(ctx context.Context, documentID string, chunks []Chunk) (Index, error)

	// Load opens a previously persisted index for documentID.
	// Returns ErrIndexNotFound if none exists.
	Load(ctx context.Context, documentID string) (Index, error)

	// Delete removes the persisted index for documentID, if any.
	Delete(ctx context.Context, documentID string) error

	// Close releases resources held by the store.
	Close() error
}
