package testutils

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/foliolabs/folio/pkg/vector"
)

// MockEmbedder is a test embedder that returns predictable embeddings.
// Texts not present in Embeddings get a deterministic bag-of-words
// vector so that overlapping texts score higher than unrelated ones.
type MockEmbedder struct {
	Embeddings map[string][]float32

	// FailOn causes Embed to return an error when the input text matches
	FailOn string

	// FailAlways causes every call to fail.
	FailAlways bool

	// Calls counts individual texts embedded (batch items included).
	Calls atomic.Int64
}

func NewMockEmbedder() *MockEmbedder {
	return &MockEmbedder{
		Embeddings: make(map[string][]float32),
	}
}

func (m *MockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if m.FailAlways || (m.FailOn != "" && text == m.FailOn) {
		return nil, fmt.Errorf("%w: mock failure for %q", vector.ErrEmbedding, text)
	}

	m.Calls.Add(1)

	if emb, ok := m.Embeddings[text]; ok {
		return emb, nil
	}

	return wordVector(text), nil
}

func (m *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embs := make([][]float32, len(texts))
	for i, t := range texts {
		emb, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		embs[i] = emb
	}
	return embs, nil
}

func (m *MockEmbedder) Close() error {
	return nil
}

// wordVector hashes words into a small fixed-dimension vector. Shared
// words produce correlated vectors, which is enough structure for
// retrieval tests.
func wordVector(text string) []float32 {
	const dim = 16
	v := make([]float32, dim)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		var h uint32 = 2166136261
		for i := 0; i < len(w); i++ {
			h ^= uint32(w[i])
			h *= 16777619
		}
		v[h%dim]++
	}
	return v
}
