package testutils

import (
	"context"
	"sync/atomic"

	"github.com/foliolabs/folio/pkg/vector"
	"github.com/foliolabs/folio/pkg/vector/memory"
)

// CountingStore wraps the in-memory vector store and counts builds.
// Used to assert the at-most-one-build-per-document guarantee.
type CountingStore struct {
	*memory.Store

	Builds atomic.Int64

	// BuildErr, when set, makes Build fail.
	BuildErr error
}

func NewCountingStore() *CountingStore {
	return &CountingStore{Store: memory.NewStore()}
}

func (s *CountingStore) Build(ctx context.Context, documentID string, chunks []vector.Chunk) (vector.Index, error) {
	s.Builds.Add(1)
	if s.BuildErr != nil {
		return nil, s.BuildErr
	}
	return s.Store.Build(ctx, documentID, chunks)
}

var _ vector.Store = (*CountingStore)(nil)
