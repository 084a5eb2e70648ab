// Package memory provides an in-process vector.Store used by tests and
// local development. Indexes live for the process lifetime; Load only
// finds what Build stored earlier in the same process.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/foliolabs/folio/pkg/vector"
)

// Store implements vector.Store with in-process data structures.
type Store struct {
	mu sync.RWMutex

	// indexes maps document id -> built chunk snapshot.
	indexes map[string][]vector.Chunk
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		indexes: make(map[string][]vector.Chunk),
	}
}

// Build stores a snapshot of the chunks and returns a handle over it.
// Replaces any prior index for the document.
func (s *Store) Build(_ context.Context, documentID string, chunks []vector.Chunk) (vector.Index, error) {
	snapshot := make([]vector.Chunk, len(chunks))
	copy(snapshot, chunks)

	s.mu.Lock()
	s.indexes[documentID] = snapshot
	s.mu.Unlock()

	return &index{documentID: documentID, chunks: snapshot}, nil
}

// Load returns a handle over a previously built index, or
// vector.ErrIndexNotFound if none exists.
func (s *Store) Load(_ context.Context, documentID string) (vector.Index, error) {
	s.mu.RLock()
	chunks, ok := s.indexes[documentID]
	s.mu.RUnlock()

	if !ok {
		return nil, vector.ErrIndexNotFound
	}

	return &index{documentID: documentID, chunks: chunks}, nil
}

// Delete removes the stored index for the document, if any.
func (s *Store) Delete(_ context.Context, documentID string) error {
	s.mu.Lock()
	delete(s.indexes, documentID)
	s.mu.Unlock()
	return nil
}

// Close is a no-op for the in-memory store.
func (s *Store) Close() error {
	return nil
}

// index is a read-only handle over one document's chunk snapshot.
type index struct {
	documentID string
	chunks     []vector.Chunk
}

func (i *index) DocumentID() string {
	return i.documentID
}

func (i *index) Count() int {
	return len(i.chunks)
}

// Search ranks chunks by cosine similarity to the query embedding,
// descending, ties broken by ascending chunk id.
func (i *index) Search(_ context.Context, embedding []float32, topK int) ([]vector.SearchResult, error) {
	if topK <= 0 {
		topK = 10
	}

	results := make([]vector.SearchResult, 0, len(i.chunks))
	for _, c := range i.chunks {
		results = append(results, vector.SearchResult{
			Chunk: c,
			Score: CosineSimilarity(embedding, c.Embedding),
		})
	}

	sort.SliceStable(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		return results[a].ChunkID < results[b].ChunkID
	})

	if len(results) > topK {
		results = results[:topK]
	}

	return results, nil
}

func (i *index) Close() error {
	return nil
}

// CosineSimilarity computes the cosine of the angle between two vectors.
// Returns 0 for mismatched or zero-length vectors.
func CosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}

var _ vector.Store = (*Store)(nil)
