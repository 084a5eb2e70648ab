package extract

import (
	"fmt"
	"os"
)

// Plain passes .txt and .md files through untouched.
type Plain struct{}

func (Plain) Extract(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return &Result{Text: string(data)}, nil
}

// Ensure Plain implements Extractor
var _ Extractor = Plain{}
