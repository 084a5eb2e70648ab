// Package api provides the HTTP API for uploading documents and asking
// questions about them.
package api

// Config is the API server configuration.
type Config struct {
	// ListenAddr is the address to listen on (e.g., ":8080")
	ListenAddr string

	// UploadsDir is where uploaded files are stored.
	UploadsDir string

	// MaxUploadBytes bounds the accepted request body size.
	// Defaults to 50 MiB when zero.
	MaxUploadBytes int
}

const defaultMaxUploadBytes = 50 * 1024 * 1024
