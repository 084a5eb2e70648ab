package ollama_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/foliolabs/folio/pkg/embeddings/ollama"
	"github.com/foliolabs/folio/pkg/vector"
)

func TestOllamaEmbedder(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Ollama Embedder Suite")
}

var _ = Describe("Embedder", func() {
	var (
		server   *httptest.Server
		requests []map[string]any
		respond  func(w http.ResponseWriter)
		ctx      context.Context
	)

	newEmbedder := func() *ollama.Embedder {
		e, err := ollama.NewEmbedder(ollama.EmbedderConfig{
			BaseURL: server.URL,
			Model:   "nomic-embed-text",
		})
		Expect(err).NotTo(HaveOccurred())
		return e
	}

	BeforeEach(func() {
		requests = nil
		respond = func(w http.ResponseWriter) {
			json.NewEncoder(w).Encode(map[string]any{
				"embeddings": [][]float32{{0.1, 0.2, 0.3}},
			})
		}
		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/api/embed"))
			var body map[string]any
			Expect(json.NewDecoder(r.Body).Decode(&body)).To(Succeed())
			requests = append(requests, body)
			respond(w)
		}))
		ctx = context.Background()
	})

	AfterEach(func() {
		server.Close()
	})

	It("embeds a single text", func() {
		e := newEmbedder()
		defer e.Close()

		emb, err := e.Embed(ctx, "hello world")
		Expect(err).NotTo(HaveOccurred())
		Expect(emb).To(Equal([]float32{0.1, 0.2, 0.3}))

		Expect(requests).To(HaveLen(1))
		Expect(requests[0]["model"]).To(Equal("nomic-embed-text"))
		Expect(requests[0]["input"]).To(Equal("hello world"))
	})

	It("sends a batch as a single request", func() {
		respond = func(w http.ResponseWriter) {
			json.NewEncoder(w).Encode(map[string]any{
				"embeddings": [][]float32{{1}, {2}, {3}},
			})
		}

		e := newEmbedder()
		defer e.Close()

		embs, err := e.EmbedBatch(ctx, []string{"a", "b", "c"})
		Expect(err).NotTo(HaveOccurred())
		Expect(embs).To(HaveLen(3))
		Expect(requests).To(HaveLen(1))
		Expect(requests[0]["input"]).To(Equal([]any{"a", "b", "c"}))
	})

	It("skips the request entirely for an empty batch", func() {
		e := newEmbedder()
		defer e.Close()

		embs, err := e.EmbedBatch(ctx, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(embs).To(BeNil())
		Expect(requests).To(BeEmpty())
	})

	It("wraps upstream failures in ErrEmbedding", func() {
		respond = func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusInternalServerError)
		}

		e := newEmbedder()
		defer e.Close()

		_, err := e.Embed(ctx, "text")
		Expect(errors.Is(err, vector.ErrEmbedding)).To(BeTrue())
	})

	It("rejects a count mismatch between inputs and embeddings", func() {
		respond = func(w http.ResponseWriter) {
			json.NewEncoder(w).Encode(map[string]any{
				"embeddings": [][]float32{{1}},
			})
		}

		e := newEmbedder()
		defer e.Close()

		_, err := e.EmbedBatch(ctx, []string{"a", "b"})
		Expect(errors.Is(err, vector.ErrEmbedding)).To(BeTrue())
	})
})
