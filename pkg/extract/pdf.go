package extract

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDF extracts text from PDF files page by page. Pages are separated
// by blank lines so paragraph-boundary chunking respects them.
type PDF struct{}

func (PDF) Extract(path string) (*Result, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf %s: %w", path, err)
	}
	defer f.Close()

	pageCount := reader.NumPage()

	var sb strings.Builder
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("extracting page %d of %s: %w", i, path, err)
		}

		if strings.TrimSpace(text) == "" {
			continue
		}

		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(strings.TrimSpace(text))
	}

	return &Result{
		Text:      sb.String(),
		PageCount: pageCount,
	}, nil
}

// Ensure PDF implements Extractor
var _ Extractor = PDF{}
