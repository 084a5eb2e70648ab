package config_test

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/foliolabs/folio/pkg/config"
)

func TestConfig(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Config Suite")
}

var _ = Describe("Config", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	Describe("Load", func() {
		It("returns defaults when no config file exists", func() {
			cfg, err := config.Load(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.API.Listen).To(Equal(":8080"))
			Expect(cfg.Retrieval.TopK).To(Equal(3))
			Expect(cfg.Chunking.MaxSize).To(Equal(1000))
			Expect(cfg.Chunking.Overlap).To(Equal(200))
			Expect(cfg.VectorStore.Provider).To(Equal("sqlite-vec"))
			Expect(cfg.Embedding.Provider).To(Equal("ollama"))
			Expect(cfg.Events.Provider).To(Equal("nop"))
		})

		It("overrides defaults with folio.toml values", func() {
			toml := []byte(`
[api]
listen = ":9000"

[retrieval]
top_k = 5

[embedding]
model = "all-minilm"
dimensions = 384
`)
			Expect(os.WriteFile(filepath.Join(dir, "folio.toml"), toml, 0o644)).To(Succeed())

			cfg, err := config.Load(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.API.Listen).To(Equal(":9000"))
			Expect(cfg.Retrieval.TopK).To(Equal(5))
			Expect(cfg.Embedding.Model).To(Equal("all-minilm"))
			Expect(cfg.Embedding.Dimensions).To(Equal(uint(384)))

			// Untouched sections keep their defaults.
			Expect(cfg.Chunking.MaxSize).To(Equal(1000))
		})

		It("lets environment variables override file values", func() {
			GinkgoT().Setenv("FOLIO_API_LISTEN", ":7070")

			cfg, err := config.Load(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.API.Listen).To(Equal(":7070"))
		})
	})
})
