package qdrant_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/foliolabs/folio/pkg/vector"
	"github.com/foliolabs/folio/pkg/vector/qdrant"
)

func TestQdrantStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Qdrant Store Suite")
}

// fakeQdrant is a minimal in-memory stand-in for the Qdrant REST API
// covering the collection and point operations the store uses.
type fakeQdrant struct {
	collections map[string][]map[string]any
	searchResp  []map[string]any
}

func (f *fakeQdrant) handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
		if len(parts) < 2 || parts[0] != "collections" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		name := parts[1]

		switch {
		case len(parts) == 2 && r.Method == http.MethodDelete:
			delete(f.collections, name)
			json.NewEncoder(w).Encode(map[string]any{"result": true})

		case len(parts) == 2 && r.Method == http.MethodPut:
			f.collections[name] = nil
			json.NewEncoder(w).Encode(map[string]any{"result": true})

		case len(parts) == 2 && r.Method == http.MethodGet:
			points, ok := f.collections[name]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"result": map[string]any{"points_count": len(points)},
			})

		case len(parts) == 3 && parts[2] == "points" && r.Method == http.MethodPut:
			var body struct {
				Points []map[string]any `json:"points"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			f.collections[name] = append(f.collections[name], body.Points...)
			json.NewEncoder(w).Encode(map[string]any{"result": true})

		case len(parts) == 4 && parts[2] == "points" && parts[3] == "search":
			json.NewEncoder(w).Encode(map[string]any{"result": f.searchResp})

		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

var _ = Describe("Store", func() {
	var (
		fake   *fakeQdrant
		server *httptest.Server
		store  *qdrant.Store
		ctx    context.Context
	)

	chunks := []vector.Chunk{
		{DocumentID: "doc-1", ChunkID: 0, Text: "first", Embedding: []float32{1, 0}},
		{DocumentID: "doc-1", ChunkID: 1, Text: "second", Embedding: []float32{0, 1}},
	}

	BeforeEach(func() {
		fake = &fakeQdrant{collections: make(map[string][]map[string]any)}
		server = httptest.NewServer(fake.handler())

		var err error
		store, err = qdrant.NewStore(qdrant.Config{
			URL:        server.URL,
			Dimensions: 2,
		}, zap.NewNop())
		Expect(err).NotTo(HaveOccurred())
		ctx = context.Background()
	})

	AfterEach(func() {
		server.Close()
	})

	Describe("NewStore", func() {
		It("requires a URL", func() {
			_, err := qdrant.NewStore(qdrant.Config{Dimensions: 2}, zap.NewNop())
			Expect(err).To(HaveOccurred())
		})

		It("requires dimensions", func() {
			_, err := qdrant.NewStore(qdrant.Config{URL: "http://localhost:6333"}, zap.NewNop())
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Build and Load", func() {
		It("creates a per-document collection and counts its points", func() {
			idx, err := store.Build(ctx, "doc-1", chunks)
			Expect(err).NotTo(HaveOccurred())
			Expect(idx.DocumentID()).To(Equal("doc-1"))
			Expect(idx.Count()).To(Equal(2))

			loaded, err := store.Load(ctx, "doc-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Count()).To(Equal(2))
		})

		It("returns ErrIndexNotFound for a missing collection", func() {
			_, err := store.Load(ctx, "never-built")
			Expect(errors.Is(err, vector.ErrIndexNotFound)).To(BeTrue())
		})

		It("replaces the collection wholesale on rebuild", func() {
			_, err := store.Build(ctx, "doc-1", chunks)
			Expect(err).NotTo(HaveOccurred())

			idx, err := store.Build(ctx, "doc-1", chunks[:1])
			Expect(err).NotTo(HaveOccurred())
			Expect(idx.Count()).To(Equal(1))
		})
	})

	Describe("Delete", func() {
		It("drops the collection", func() {
			_, err := store.Build(ctx, "doc-1", chunks)
			Expect(err).NotTo(HaveOccurred())

			Expect(store.Delete(ctx, "doc-1")).To(Succeed())

			_, err = store.Load(ctx, "doc-1")
			Expect(errors.Is(err, vector.ErrIndexNotFound)).To(BeTrue())
		})

		It("tolerates deleting a collection that never existed", func() {
			Expect(store.Delete(ctx, "never-built")).To(Succeed())
		})
	})

	Describe("Search", func() {
		It("maps payloads to chunks and breaks score ties by chunk id", func() {
			fake.searchResp = []map[string]any{
				{"score": 0.9, "payload": map[string]any{"chunk_id": 1, "text": "second"}},
				{"score": 0.9, "payload": map[string]any{"chunk_id": 0, "text": "first"}},
				{"score": 0.5, "payload": map[string]any{"chunk_id": 2, "text": "third"}},
			}

			idx, err := store.Build(ctx, "doc-1", chunks)
			Expect(err).NotTo(HaveOccurred())

			results, err := idx.Search(ctx, []float32{1, 0}, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			Expect(results[0].ChunkID).To(Equal(0))
			Expect(results[1].ChunkID).To(Equal(1))
			Expect(results[2].ChunkID).To(Equal(2))
			Expect(results[0].DocumentID).To(Equal("doc-1"))
		})
	})

	Describe("connection failures", func() {
		It("wraps transport errors in ErrConnection", func() {
			server.Close()

			_, err := store.Build(ctx, "doc-1", chunks)
			Expect(errors.Is(err, vector.ErrConnection)).To(BeTrue())
		})
	})
})
