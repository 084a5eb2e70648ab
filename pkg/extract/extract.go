// Package extract pulls plain text out of uploaded files so it can be
// chunked and indexed.
package extract

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Result is the extracted text of a file. PageCount is 0 for formats
// without pages.
type Result struct {
	Text      string
	PageCount int
}

// Extractor extracts text from a file on disk.
type Extractor interface {
	Extract(path string) (*Result, error)
}

// UnsupportedTypeError is returned for file extensions no extractor
// handles.
type UnsupportedTypeError struct {
	Ext string
}

func (e UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported file type: %s", e.Ext)
}

// FromFile extracts text from path, choosing the extractor by file
// extension.
func FromFile(path string) (*Result, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return PDF{}.Extract(path)
	case ".txt", ".md":
		return Plain{}.Extract(path)
	default:
		return nil, UnsupportedTypeError{Ext: filepath.Ext(path)}
	}
}

// Supported reports whether FromFile can handle the path's extension.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf", ".txt", ".md":
		return true
	default:
		return false
	}
}
