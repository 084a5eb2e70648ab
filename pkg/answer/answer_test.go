package answer_test

import (
	"context"
	"errors"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/foliolabs/folio/pkg/answer"
	"github.com/foliolabs/folio/pkg/llm"
	testutils "github.com/foliolabs/folio/pkg/utils/test"
	"github.com/foliolabs/folio/pkg/vector"
)

func TestAnswer(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Answer Engine Suite")
}

var _ = Describe("Engine", func() {
	var (
		generator *testutils.MockGenerator
		engine    *answer.Engine
		ctx       context.Context
	)

	chunk := func(id int, text string) vector.SearchResult {
		return vector.SearchResult{
			Chunk: vector.Chunk{DocumentID: "doc-1", ChunkID: id, Text: text},
			Score: 1.0 - float32(id)*0.1,
		}
	}

	BeforeEach(func() {
		generator = testutils.NewMockGenerator("Grass is green.")
		engine = answer.NewEngine(generator, 0, zap.NewNop())
		ctx = context.Background()
	})

	It("answers from the provided chunks", func() {
		ans, err := engine.Answer(ctx, "What color is grass?", []vector.SearchResult{
			chunk(0, "The sky is blue."),
			chunk(1, "Grass is green."),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(ans.Text).To(Equal("Grass is green."))
	})

	It("includes every chunk text and the question in the prompt", func() {
		_, err := engine.Answer(ctx, "What color is grass?", []vector.SearchResult{
			chunk(0, "The sky is blue."),
			chunk(1, "Grass is green."),
		})
		Expect(err).NotTo(HaveOccurred())

		prompt := generator.LastPrompt()
		Expect(prompt).To(ContainSubstring("The sky is blue."))
		Expect(prompt).To(ContainSubstring("Grass is green."))
		Expect(prompt).To(ContainSubstring("Question: What color is grass?"))
		Expect(prompt).To(ContainSubstring("just say that you don't know"))
	})

	It("returns sources in retrieval order", func() {
		chunks := []vector.SearchResult{
			chunk(4, "fourth chunk"),
			chunk(0, "first chunk"),
			chunk(2, "second chunk"),
		}

		ans, err := engine.Answer(ctx, "question", chunks)
		Expect(err).NotTo(HaveOccurred())
		Expect(ans.Sources).To(Equal(chunks))
	})

	It("passes the configured temperature through", func() {
		warm := answer.NewEngine(generator, 0.7, zap.NewNop())

		_, err := warm.Answer(ctx, "question", []vector.SearchResult{chunk(0, "text")})
		Expect(err).NotTo(HaveOccurred())
		Expect(generator.Temperatures).To(Equal([]float64{0.7}))
	})

	It("returns ErrInsufficientContext for empty retrieval without calling the model", func() {
		_, err := engine.Answer(ctx, "question", nil)
		Expect(errors.Is(err, answer.ErrInsufficientContext)).To(BeTrue())
		Expect(generator.Prompts).To(BeEmpty())
	})

	It("wraps generation failures without retrying", func() {
		generator.Err = llm.ErrGeneration

		_, err := engine.Answer(ctx, "question", []vector.SearchResult{chunk(0, "text")})
		Expect(errors.Is(err, llm.ErrGeneration)).To(BeTrue())
		Expect(len(generator.Prompts)).To(Equal(1))
	})

	It("trims whitespace from the model output", func() {
		generator.Response = "\n  An answer.  \n"

		ans, err := engine.Answer(ctx, "question", []vector.SearchResult{chunk(0, "text")})
		Expect(err).NotTo(HaveOccurred())
		Expect(ans.Text).To(Equal("An answer."))
	})
})
