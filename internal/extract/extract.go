// Package extract pulls per-page plain text out of a PDF.
package extract

import (
	"errors"
	"fmt"

	"github.com/ledongthuc/pdf"
)

// ErrExtraction is returned when the file itself cannot be opened or read.
// A well-formed PDF never fails: pages without extractable text come back
// as empty strings.
var ErrExtraction = errors.New("text extraction failure")

// Extractor reads page texts from a PDF on disk.
type Extractor interface {
	Pages(path string) ([]string, error)
}

// PDFExtractor extracts text with a pure-Go PDF reader.
type PDFExtractor struct{}

// Pages returns one entry per page, in page order. Pages that carry no text
// layer, or whose content cannot be decoded, yield empty strings.
func (PDFExtractor) Pages(path string) ([]string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: could not read %s: %v", ErrExtraction, path, err)
	}
	defer f.Close()

	numPages := r.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			pages = append(pages, "")
			continue
		}
		pages = append(pages, text)
	}
	return pages, nil
}
