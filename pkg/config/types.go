// Package config loads folio configuration from folio.toml, environment
// variables, and defaults.
package config

// Config is the root configuration for all folio components.
type Config struct {
	Version int `mapstructure:"version" toml:"version"`

	Storage     StorageConfig     `mapstructure:"storage" toml:"storage"`
	API         APIConfig         `mapstructure:"api" toml:"api"`
	Uploads     UploadsConfig     `mapstructure:"uploads" toml:"uploads"`
	Ingest      IngestConfig      `mapstructure:"ingest" toml:"ingest"`
	VectorStore VectorStoreConfig `mapstructure:"vector_store" toml:"vector_store"`
	Embedding   EmbeddingConfig   `mapstructure:"embedding" toml:"embedding"`
	LLM         LLMConfig         `mapstructure:"llm" toml:"llm"`
	Retrieval   RetrievalConfig   `mapstructure:"retrieval" toml:"retrieval"`
	Chunking    ChunkingConfig    `mapstructure:"chunking" toml:"chunking"`
	Events      EventsConfig      `mapstructure:"events" toml:"events"`
}

// StorageConfig configures the relational metadata store.
type StorageConfig struct {
	// SQLitePath is the path to the metadata database.
	// Empty means <dotdir>/folio.db; ":memory:" for in-memory.
	SQLitePath string `mapstructure:"sqlite_path" toml:"sqlite_path"`
}

// APIConfig configures the HTTP API server.
type APIConfig struct {
	Listen string `mapstructure:"listen" toml:"listen"`
}

// UploadsConfig configures where uploaded files are kept.
type UploadsConfig struct {
	// Dir is the upload directory. Empty means <dotdir>/uploads.
	Dir string `mapstructure:"dir" toml:"dir"`
}

// IngestConfig configures the optional drop-directory watcher.
type IngestConfig struct {
	// WatchDir enables the fsnotify ingester when non-empty.
	WatchDir string `mapstructure:"watch_dir" toml:"watch_dir"`
}

// VectorStoreConfig configures the vector index backend.
type VectorStoreConfig struct {
	// Provider selects the backend: "sqlite-vec", "qdrant", or "memory".
	Provider string `mapstructure:"provider" toml:"provider"`

	// Target is provider-specific: a directory for sqlite-vec
	// (empty means <dotdir>/indexes), a base URL for qdrant.
	Target string `mapstructure:"target" toml:"target"`
}

// EmbeddingConfig configures the embedding model client.
type EmbeddingConfig struct {
	// Provider selects the client: "ollama" or "openai".
	Provider string `mapstructure:"provider" toml:"provider"`

	// Target is the provider base URL.
	Target string `mapstructure:"target" toml:"target"`

	// Model is the embedding model name.
	Model string `mapstructure:"model" toml:"model"`

	// Dimensions is the embedding vector width. Index build and query
	// must use the same model and dimensions.
	Dimensions uint `mapstructure:"dimensions" toml:"dimensions"`
}

// LLMConfig configures the answer generation client.
type LLMConfig struct {
	// Provider selects the client: "ollama" or "openai".
	Provider string `mapstructure:"provider" toml:"provider"`

	// Target is the provider base URL.
	Target string `mapstructure:"target" toml:"target"`

	// Model is the generation model name.
	Model string `mapstructure:"model" toml:"model"`

	// Temperature for answer generation. Grounded answering wants 0.
	Temperature float64 `mapstructure:"temperature" toml:"temperature"`
}

// RetrievalConfig tunes how many chunks ground each answer.
type RetrievalConfig struct {
	TopK int `mapstructure:"top_k" toml:"top_k"`
}

// ChunkingConfig tunes the document splitter.
type ChunkingConfig struct {
	// MaxSize is the maximum chunk length in characters.
	MaxSize int `mapstructure:"max_size" toml:"max_size"`

	// Overlap is the approximate number of characters shared between
	// consecutive chunks.
	Overlap int `mapstructure:"overlap" toml:"overlap"`
}

// EventsConfig configures the optional event stream publisher.
type EventsConfig struct {
	// Provider selects the publisher: "nop" or "kafka".
	Provider string `mapstructure:"provider" toml:"provider"`

	// Brokers is the comma-separated Kafka broker list.
	Brokers string `mapstructure:"brokers" toml:"brokers"`

	// Topic is the Kafka topic for folio events.
	Topic string `mapstructure:"topic" toml:"topic"`
}
