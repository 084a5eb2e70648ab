// Package index orchestrates chunking, embedding, and index persistence
// per document.
//
// The Registry owns the lifecycle of each document's vector index:
// load-if-persisted, otherwise build once, then serve the in-memory
// handle for the rest of the process. Concurrent ensures for the same
// document collapse into a single build; searches against a ready
// handle need no locking.
package index

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/foliolabs/folio/pkg/chunker"
	"github.com/foliolabs/folio/pkg/embeddings"
	"github.com/foliolabs/folio/pkg/vector"
)

// ErrBuildFailed is returned when the chunk+embed+persist pipeline fails.
// The index state remains unbuilt; callers may retry.
var ErrBuildFailed = errors.New("index build failed")

// TextSupplier fetches a document's full raw text. Invoked only when no
// persisted index exists and a build is required.
type TextSupplier func(ctx context.Context) (string, error)

// Registry maps document ids to ready vector index handles.
type Registry struct {
	store    vector.Store
	embedder embeddings.Embedder
	chunking chunker.Config
	logger   *zap.Logger

	group singleflight.Group

	mu sync.RWMutex

	// handles holds ready indexes. Entries are immutable once inserted;
	// reads take the read lock only.
	handles map[string]vector.Index
}

// NewRegistry creates a Registry over the given store and embedder.
func NewRegistry(store vector.Store, embedder embeddings.Embedder, chunking chunker.Config, logger *zap.Logger) *Registry {
	if chunking.MaxSize <= 0 {
		chunking.MaxSize = chunker.DefaultMaxSize
	}
	if chunking.Overlap < 0 {
		chunking.Overlap = chunker.DefaultOverlap
	}

	return &Registry{
		store:    store,
		embedder: embedder,
		chunking: chunking,
		logger:   logger,
		handles:  make(map[string]vector.Index),
	}
}

// Ensure returns the ready index for documentID, loading a persisted one
// or building from the supplied text. At most one build runs per
// document id; concurrent callers await the in-flight result.
func (r *Registry) Ensure(ctx context.Context, documentID string, fullText TextSupplier) (vector.Index, error) {
	r.mu.RLock()
	handle, ok := r.handles[documentID]
	r.mu.RUnlock()
	if ok {
		return handle, nil
	}

	v, err, _ := r.group.Do(documentID, func() (any, error) {
		// Re-check under the flight: a concurrent caller may have
		// finished while this one queued.
		r.mu.RLock()
		handle, ok := r.handles[documentID]
		r.mu.RUnlock()
		if ok {
			return handle, nil
		}

		idx, err := r.loadOrBuild(ctx, documentID, fullText)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.handles[documentID] = idx
		r.mu.Unlock()

		return idx, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(vector.Index), nil
}

func (r *Registry) loadOrBuild(ctx context.Context, documentID string, fullText TextSupplier) (vector.Index, error) {
	idx, err := r.store.Load(ctx, documentID)
	if err == nil {
		r.logger.Debug("loaded persisted index",
			zap.String("document_id", documentID),
			zap.Int("chunks", idx.Count()),
		)
		return idx, nil
	}
	if !errors.Is(err, vector.ErrIndexNotFound) {
		return nil, fmt.Errorf("%w: loading index for %s: %v", ErrBuildFailed, documentID, err)
	}

	text, err := fullText(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching text for %s: %v", ErrBuildFailed, documentID, err)
	}

	return r.build(ctx, documentID, text)
}

// build runs the chunk -> embed -> persist pipeline for one document.
func (r *Registry) build(ctx context.Context, documentID, text string) (vector.Index, error) {
	texts := chunker.Split(text, r.chunking.MaxSize, r.chunking.Overlap)

	chunks := make([]vector.Chunk, len(texts))
	if len(texts) > 0 {
		embs, err := r.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("%w: embedding %d chunks for %s: %v", ErrBuildFailed, len(texts), documentID, err)
		}

		for i, t := range texts {
			chunks[i] = vector.Chunk{
				DocumentID: documentID,
				ChunkID:    i,
				Text:       t,
				Embedding:  embs[i],
			}
		}
	}

	idx, err := r.store.Build(ctx, documentID, chunks)
	if err != nil {
		return nil, fmt.Errorf("%w: persisting index for %s: %v", ErrBuildFailed, documentID, err)
	}

	r.logger.Info("built document index",
		zap.String("document_id", documentID),
		zap.Int("chunks", len(chunks)),
	)

	return idx, nil
}

// Drop removes the in-memory handle and the persisted index for a
// document. Safe to call for documents that were never indexed.
func (r *Registry) Drop(ctx context.Context, documentID string) error {
	r.mu.Lock()
	handle, ok := r.handles[documentID]
	delete(r.handles, documentID)
	r.mu.Unlock()

	if ok {
		if err := handle.Close(); err != nil {
			r.logger.Warn("closing dropped index handle",
				zap.String("document_id", documentID),
				zap.Error(err),
			)
		}
	}

	if err := r.store.Delete(ctx, documentID); err != nil {
		return fmt.Errorf("removing persisted index for %s: %w", documentID, err)
	}

	return nil
}

// Close releases all cached handles and the underlying store.
func (r *Registry) Close() error {
	r.mu.Lock()
	for id, handle := range r.handles {
		if err := handle.Close(); err != nil {
			r.logger.Warn("closing index handle", zap.String("document_id", id), zap.Error(err))
		}
	}
	r.handles = make(map[string]vector.Index)
	r.mu.Unlock()

	return r.store.Close()
}
