package config

const (
	// v0 is the alpha version of the config
	v0 = 0

	// CurrentV is the currently supported version, points to v0
	CurrentV = v0
)

// NewDefaultConfig returns a fully-populated Config with default values.
// defaults.go is the single source of truth for defaults; viper and the
// commanders both derive from it.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			SQLitePath: "",
		},
		API: APIConfig{
			Listen: ":8080",
		},
		Uploads: UploadsConfig{
			Dir: "",
		},
		Ingest: IngestConfig{
			WatchDir: "",
		},
		VectorStore: VectorStoreConfig{
			Provider: "sqlite-vec",
			Target:   "",
		},
		Embedding: EmbeddingConfig{
			Provider:   "ollama",
			Target:     "http://localhost:11434",
			Model:      "nomic-embed-text",
			Dimensions: 768,
		},
		LLM: LLMConfig{
			Provider:    "ollama",
			Target:      "http://localhost:11434",
			Model:       "llama3.2",
			Temperature: 0,
		},
		Retrieval: RetrievalConfig{
			TopK: 3,
		},
		Chunking: ChunkingConfig{
			MaxSize: 1000,
			Overlap: 200,
		},
		Events: EventsConfig{
			Provider: "nop",
			Brokers:  "localhost:9092",
			Topic:    "folio.events",
		},
	}
}
