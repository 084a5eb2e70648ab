// Package qdrant provides a vector.Store backed by Qdrant's REST API.
//
// Each document's index is its own collection, created with cosine
// distance. Build drops and recreates the collection wholesale.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/foliolabs/folio/pkg/vector"
)

const (
	// collectionPrefix namespaces folio collections inside a shared
	// Qdrant instance.
	collectionPrefix = "folio_doc_"

	defaultTimeout = 30 * time.Second
)

// Store implements vector.Store over Qdrant's REST API.
type Store struct {
	baseURL    string
	apiKey     string
	dimensions uint
	httpClient *http.Client
	logger     *zap.Logger
}

// Config holds configuration for the Qdrant store.
type Config struct {
	// URL is the Qdrant server URL (e.g., "http://localhost:6333").
	URL string

	// APIKey is the optional api-key header value.
	APIKey string

	// Dimensions is the number of dimensions for the embedding vectors.
	Dimensions uint
}

// NewStore creates a Qdrant-backed vector store.
func NewStore(c Config, logger *zap.Logger) (*Store, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("qdrant URL is required")
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("qdrant embedding dimensions cannot be 0, must be configured")
	}

	logger.Info("qdrant vector store initialized",
		zap.String("url", c.URL),
		zap.Uint("dimensions", c.Dimensions),
	)

	return &Store{
		baseURL:    c.URL,
		apiKey:     c.APIKey,
		dimensions: c.Dimensions,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}, nil
}

func collectionName(documentID string) string {
	return collectionPrefix + documentID
}

// Build recreates the document's collection and upserts all chunks.
func (s *Store) Build(ctx context.Context, documentID string, chunks []vector.Chunk) (vector.Index, error) {
	name := collectionName(documentID)

	// Replace wholesale: drop any existing collection first.
	if err := s.doJSON(ctx, http.MethodDelete, "/collections/"+name, nil, nil); err != nil {
		return nil, err
	}

	createBody := map[string]any{
		"vectors": map[string]any{
			"size":     s.dimensions,
			"distance": "Cosine",
		},
	}
	if err := s.doJSON(ctx, http.MethodPut, "/collections/"+name, createBody, nil); err != nil {
		return nil, err
	}

	if len(chunks) > 0 {
		points := make([]map[string]any, len(chunks))
		for i, chunk := range chunks {
			// Per-document collections make the chunk id a valid
			// numeric point id.
			points[i] = map[string]any{
				"id":     chunk.ChunkID,
				"vector": chunk.Embedding,
				"payload": map[string]any{
					"document_id": chunk.DocumentID,
					"chunk_id":    chunk.ChunkID,
					"text":        chunk.Text,
				},
			}
		}

		upsert := map[string]any{"points": points}
		if err := s.doJSON(ctx, http.MethodPut, "/collections/"+name+"/points?wait=true", upsert, nil); err != nil {
			return nil, err
		}
	}

	s.logger.Debug("built qdrant index",
		zap.String("document_id", documentID),
		zap.Int("chunks", len(chunks)),
	)

	return &index{store: s, documentID: documentID, count: len(chunks)}, nil
}

// Load opens a handle over an existing collection, verifying it exists.
func (s *Store) Load(ctx context.Context, documentID string) (vector.Index, error) {
	name := collectionName(documentID)

	var resp struct {
		Result struct {
			PointsCount int `json:"points_count"`
		} `json:"result"`
	}

	status, err := s.do(ctx, http.MethodGet, "/collections/"+name, nil, &resp)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, vector.ErrIndexNotFound
	}
	if status >= 300 {
		return nil, fmt.Errorf("%w: qdrant returned status %d", vector.ErrConnection, status)
	}

	return &index{store: s, documentID: documentID, count: resp.Result.PointsCount}, nil
}

// Delete drops the document's collection.
func (s *Store) Delete(ctx context.Context, documentID string) error {
	return s.doJSON(ctx, http.MethodDelete, "/collections/"+collectionName(documentID), nil, nil)
}

// Close releases resources held by the store.
func (s *Store) Close() error {
	return nil
}

// doJSON issues a request and treats any non-2xx status as an error,
// except 404 which is tolerated for deletes.
func (s *Store) doJSON(ctx context.Context, method, path string, body, out any) error {
	status, err := s.do(ctx, method, path, body, out)
	if err != nil {
		return err
	}
	if status >= 300 && !(method == http.MethodDelete && status == http.StatusNotFound) {
		return fmt.Errorf("%w: qdrant %s %s returned status %d", vector.ErrConnection, method, path, status)
	}
	return nil
}

func (s *Store) do(ctx context.Context, method, path string, body, out any) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return 0, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", vector.ErrConnection, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
		}
	}

	return resp.StatusCode, nil
}

// index is a handle over one document's collection.
type index struct {
	store      *Store
	documentID string
	count      int
}

func (i *index) DocumentID() string {
	return i.documentID
}

func (i *index) Count() int {
	return i.count
}

// Search queries the collection, ranked by cosine similarity descending,
// ties broken by ascending chunk id.
func (i *index) Search(ctx context.Context, embedding []float32, topK int) ([]vector.SearchResult, error) {
	if topK <= 0 {
		topK = 10
	}

	req := map[string]any{
		"vector":       embedding,
		"limit":        topK,
		"with_payload": true,
	}

	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}

	name := collectionName(i.documentID)
	if err := i.store.doJSON(ctx, http.MethodPost, "/collections/"+name+"/points/search", req, &resp); err != nil {
		return nil, err
	}

	results := make([]vector.SearchResult, 0, len(resp.Result))
	for _, r := range resp.Result {
		chunk := vector.Chunk{DocumentID: i.documentID}
		if v, ok := r.Payload["chunk_id"].(float64); ok {
			chunk.ChunkID = int(v)
		}
		if v, ok := r.Payload["text"].(string); ok {
			chunk.Text = v
		}
		results = append(results, vector.SearchResult{Chunk: chunk, Score: float32(r.Score)})
	}

	// Qdrant orders by score; enforce the chunk id tie-break.
	sort.SliceStable(results, func(a, b int) bool {
		if results[a].Score != results[b].Score {
			return results[a].Score > results[b].Score
		}
		return results[a].ChunkID < results[b].ChunkID
	})

	return results, nil
}

func (i *index) Close() error {
	return nil
}

var _ vector.Store = (*Store)(nil)
