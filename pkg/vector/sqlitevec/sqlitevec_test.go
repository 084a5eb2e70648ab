package sqlitevec_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/foliolabs/folio/pkg/vector"
	"github.com/foliolabs/folio/pkg/vector/sqlitevec"
)

func TestSQLiteVecStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SQLiteVec Store Suite")
}

var _ = Describe("Store", func() {
	var (
		logger *zap.Logger
		store  *sqlitevec.Store
		ctx    context.Context
	)

	BeforeEach(func() {
		logger = zap.NewNop()
		ctx = context.Background()

		var err error
		store, err = sqlitevec.NewStore(sqlitevec.Config{
			Dir:        GinkgoT().TempDir(),
			Dimensions: 4,
		}, logger)
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewStore", func() {
		It("errors when the directory is empty", func() {
			_, err := sqlitevec.NewStore(sqlitevec.Config{Dimensions: 4}, logger)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("index directory is required"))
		})

		It("errors when dimensions are not specified", func() {
			_, err := sqlitevec.NewStore(sqlitevec.Config{Dir: GinkgoT().TempDir()}, logger)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Interface compliance", func() {
		It("implements vector.Store", func() {
			var _ vector.Store = (*sqlitevec.Store)(nil)
		})
	})

	Describe("Build, Load and Search", func() {
		chunks := []vector.Chunk{
			{DocumentID: "doc-1", ChunkID: 0, Text: "alpha", Embedding: []float32{1, 0, 0, 0}},
			{DocumentID: "doc-1", ChunkID: 1, Text: "beta", Embedding: []float32{0, 1, 0, 0}},
			{DocumentID: "doc-1", ChunkID: 2, Text: "near alpha", Embedding: []float32{0.9, 0.1, 0, 0}},
		}

		It("returns ErrIndexNotFound for an unknown document", func() {
			_, err := store.Load(ctx, "missing")
			Expect(errors.Is(err, vector.ErrIndexNotFound)).To(BeTrue())
		})

		It("builds an index and records the chunk count", func() {
			idx, err := store.Build(ctx, "doc-1", chunks)
			Expect(err).NotTo(HaveOccurred())
			Expect(idx.DocumentID()).To(Equal("doc-1"))
			Expect(idx.Count()).To(Equal(3))
			Expect(idx.Close()).To(Succeed())
		})

		It("rejects chunks with mismatched dimensions", func() {
			_, err := store.Build(ctx, "doc-bad", []vector.Chunk{
				{ChunkID: 0, Text: "short", Embedding: []float32{1, 0}},
			})
			Expect(err).To(HaveOccurred())

			// A failed build leaves nothing loadable behind.
			_, err = store.Load(ctx, "doc-bad")
			Expect(errors.Is(err, vector.ErrIndexNotFound)).To(BeTrue())
		})

		It("searches ranked by similarity with results sorted descending", func() {
			idx, err := store.Build(ctx, "doc-1", chunks)
			Expect(err).NotTo(HaveOccurred())
			defer idx.Close()

			results, err := idx.Search(ctx, []float32{1, 0, 0, 0}, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(3))
			Expect(results[0].Text).To(Equal("alpha"))
			Expect(results[0].ChunkID).To(Equal(0))
			for i := 1; i < len(results); i++ {
				Expect(results[i].Score).To(BeNumerically("<=", results[i-1].Score))
			}
		})

		It("round-trips: search after Load matches search after Build", func() {
			built, err := store.Build(ctx, "doc-1", chunks)
			Expect(err).NotTo(HaveOccurred())
			direct, err := built.Search(ctx, []float32{0.5, 0.5, 0, 0}, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(built.Close()).To(Succeed())

			loaded, err := store.Load(ctx, "doc-1")
			Expect(err).NotTo(HaveOccurred())
			defer loaded.Close()
			Expect(loaded.Count()).To(Equal(3))

			viaLoad, err := loaded.Search(ctx, []float32{0.5, 0.5, 0, 0}, 3)
			Expect(err).NotTo(HaveOccurred())
			Expect(viaLoad).To(Equal(direct))
		})

		It("keeps separate index files for ids that sanitize identically", func() {
			slash := []vector.Chunk{
				{DocumentID: "a/b", ChunkID: 0, Text: "slash", Embedding: []float32{1, 0, 0, 0}},
			}
			dash := []vector.Chunk{
				{DocumentID: "a-b", ChunkID: 0, Text: "dash one", Embedding: []float32{1, 0, 0, 0}},
				{DocumentID: "a-b", ChunkID: 1, Text: "dash two", Embedding: []float32{0, 1, 0, 0}},
			}

			built, err := store.Build(ctx, "a/b", slash)
			Expect(err).NotTo(HaveOccurred())
			Expect(built.Close()).To(Succeed())
			built, err = store.Build(ctx, "a-b", dash)
			Expect(err).NotTo(HaveOccurred())
			Expect(built.Close()).To(Succeed())

			loaded, err := store.Load(ctx, "a/b")
			Expect(err).NotTo(HaveOccurred())
			defer loaded.Close()
			Expect(loaded.Count()).To(Equal(1))

			results, err := loaded.Search(ctx, []float32{1, 0, 0, 0}, 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(results[0].Text).To(Equal("slash"))
		})

		It("replaces a prior index wholesale on rebuild", func() {
			first, err := store.Build(ctx, "doc-1", chunks)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Close()).To(Succeed())

			second, err := store.Build(ctx, "doc-1", chunks[:1])
			Expect(err).NotTo(HaveOccurred())
			defer second.Close()
			Expect(second.Count()).To(Equal(1))
		})
	})

	Describe("Delete", func() {
		It("makes a subsequent Load return ErrIndexNotFound", func() {
			idx, err := store.Build(ctx, "doc-1", []vector.Chunk{
				{ChunkID: 0, Text: "alpha", Embedding: []float32{1, 0, 0, 0}},
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(idx.Close()).To(Succeed())

			Expect(store.Delete(ctx, "doc-1")).To(Succeed())

			_, err = store.Load(ctx, "doc-1")
			Expect(errors.Is(err, vector.ErrIndexNotFound)).To(BeTrue())
		})

		It("is a no-op for unknown documents", func() {
			Expect(store.Delete(ctx, "missing")).To(Succeed())
		})
	})
})
