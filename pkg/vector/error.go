package vector

import "errors"

var (
	// ErrIndexNotFound is returned by Store.Load when no index has been
	// persisted for the document. It is an expected control-flow signal
	// (it triggers the build path), not a failure.
	ErrIndexNotFound = errors.New("index not found")

	// ErrEmbedding is returned when embedding generation fails.
	ErrEmbedding = errors.New("embedding failed")

	// ErrConnection is returned when the vector store connection fails.
	ErrConnection = errors.New("vector store connection failed")
)
