package sqlite_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/foliolabs/folio/pkg/storage"
	"github.com/foliolabs/folio/pkg/storage/sqlite"
)

func TestSQLiteDriver(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SQLite Storage Suite")
}

var _ = Describe("SQLiteDriver", func() {
	var (
		driver *sqlite.SQLiteDriver
		ctx    context.Context
	)

	testDocument := func(id string, uploadedAt time.Time) *storage.Document {
		return &storage.Document{
			ID:         id,
			Filename:   id + ".pdf",
			SizeBytes:  2048,
			PageCount:  3,
			Text:       "The sky is blue. Grass is green.",
			UploadedAt: uploadedAt,
		}
	}

	BeforeEach(func() {
		ctx = context.Background()
		var err error
		driver, err = sqlite.NewSQLiteDriver(":memory:")
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		if driver != nil {
			driver.Close()
		}
	})

	Describe("NewSQLiteDriver", func() {
		It("creates a driver with file database", func() {
			tmpDir := GinkgoT().TempDir()
			dbPath := filepath.Join(tmpDir, "test.db")

			s, err := sqlite.NewSQLiteDriver(dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer s.Close()

			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Describe("documents", func() {
		It("stores and retrieves a document with its text", func() {
			now := time.Now().UTC().Truncate(time.Second)
			Expect(driver.PutDocument(ctx, testDocument("doc-1", now))).To(Succeed())

			got, err := driver.GetDocument(ctx, "doc-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Filename).To(Equal("doc-1.pdf"))
			Expect(got.Text).To(Equal("The sky is blue. Grass is green."))
			Expect(got.UploadedAt.Equal(now)).To(BeTrue())
		})

		It("returns NotFoundError for unknown ids", func() {
			_, err := driver.GetDocument(ctx, "missing")
			Expect(err).To(MatchError(storage.NotFoundError{ID: "missing"}))
		})

		It("lists documents newest first", func() {
			base := time.Now().UTC().Truncate(time.Second)
			Expect(driver.PutDocument(ctx, testDocument("doc-old", base.Add(-time.Hour)))).To(Succeed())
			Expect(driver.PutDocument(ctx, testDocument("doc-new", base))).To(Succeed())

			docs, err := driver.ListDocuments(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(2))
			Expect(docs[0].ID).To(Equal("doc-new"))
			Expect(docs[1].ID).To(Equal("doc-old"))
		})

		It("replaces a document on re-put", func() {
			now := time.Now().UTC().Truncate(time.Second)
			doc := testDocument("doc-1", now)
			Expect(driver.PutDocument(ctx, doc)).To(Succeed())

			doc.Filename = "renamed.pdf"
			Expect(driver.PutDocument(ctx, doc)).To(Succeed())

			got, err := driver.GetDocument(ctx, "doc-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Filename).To(Equal("renamed.pdf"))

			docs, err := driver.ListDocuments(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
		})

		It("deletes a document and cascades to its questions", func() {
			now := time.Now().UTC().Truncate(time.Second)
			Expect(driver.PutDocument(ctx, testDocument("doc-1", now))).To(Succeed())
			Expect(driver.PutQuestion(ctx, &storage.Question{
				ID:         "q-1",
				DocumentID: "doc-1",
				Question:   "What color is grass?",
				Answer:     "Green.",
				CreatedAt:  now,
			})).To(Succeed())

			Expect(driver.DeleteDocument(ctx, "doc-1")).To(Succeed())

			_, err := driver.GetDocument(ctx, "doc-1")
			Expect(err).To(MatchError(storage.NotFoundError{ID: "doc-1"}))

			questions, err := driver.ListQuestions(ctx, "doc-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(questions).To(BeEmpty())
		})

		It("returns NotFoundError when deleting an unknown document", func() {
			err := driver.DeleteDocument(ctx, "missing")
			Expect(err).To(MatchError(storage.NotFoundError{ID: "missing"}))
		})
	})

	Describe("questions", func() {
		BeforeEach(func() {
			now := time.Now().UTC().Truncate(time.Second)
			Expect(driver.PutDocument(ctx, testDocument("doc-1", now))).To(Succeed())
		})

		It("stores and lists questions newest first with sources", func() {
			base := time.Now().UTC().Truncate(time.Second)
			Expect(driver.PutQuestion(ctx, &storage.Question{
				ID:         "q-old",
				DocumentID: "doc-1",
				Question:   "first?",
				Answer:     "one",
				Sources:    []storage.Source{{Text: "chunk a", ChunkID: 0}},
				CreatedAt:  base.Add(-time.Minute),
			})).To(Succeed())
			Expect(driver.PutQuestion(ctx, &storage.Question{
				ID:         "q-new",
				DocumentID: "doc-1",
				Question:   "second?",
				Answer:     "two",
				Sources:    []storage.Source{{Text: "chunk b", ChunkID: 1}, {Text: "chunk c", ChunkID: 2}},
				CreatedAt:  base,
			})).To(Succeed())

			questions, err := driver.ListQuestions(ctx, "doc-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(questions).To(HaveLen(2))
			Expect(questions[0].ID).To(Equal("q-new"))
			Expect(questions[0].Sources).To(Equal([]storage.Source{{Text: "chunk b", ChunkID: 1}, {Text: "chunk c", ChunkID: 2}}))
			Expect(questions[1].ID).To(Equal("q-old"))
		})

		It("deletes question history without touching the document", func() {
			now := time.Now().UTC().Truncate(time.Second)
			Expect(driver.PutQuestion(ctx, &storage.Question{
				ID:         "q-1",
				DocumentID: "doc-1",
				Question:   "?",
				Answer:     "!",
				CreatedAt:  now,
			})).To(Succeed())

			Expect(driver.DeleteQuestions(ctx, "doc-1")).To(Succeed())

			questions, err := driver.ListQuestions(ctx, "doc-1")
			Expect(err).NotTo(HaveOccurred())
			Expect(questions).To(BeEmpty())

			_, err = driver.GetDocument(ctx, "doc-1")
			Expect(err).NotTo(HaveOccurred())
		})
	})
})
