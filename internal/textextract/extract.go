// Package textextract performs full-document text extraction, page by
// page, once pdfinspect has decided a PDF does not need OCR. Grounded
// on the pack's go-fitz page loop
// (niski84-the-hive/internal/pdf/processor.go ExtractText), generalized
// to preserve per-page text instead of flattening into one string so
// the chunker can attribute chunks back to a page number (spec §4.3).
package textextract

import (
	"fmt"

	"github.com/gen2brain/go-fitz"

	"github.com/bcgov/epic-search-ingest/internal/chunker"
)

// Extractor pulls page text out of a PDF blob held in memory.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns one chunker.Page per page in the document, in page
// order, numbered from 1. A page whose text extraction fails
// contributes an empty Page rather than aborting the whole document,
// since a handful of unreadable pages shouldn't sink an otherwise good
// PDF.
func (e *Extractor) Extract(data []byte) ([]chunker.Page, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("textextract: open: %w", err)
	}
	defer doc.Close()

	numPages := doc.NumPage()
	pages := make([]chunker.Page, 0, numPages)

	for i := 0; i < numPages; i++ {
		text, err := doc.Text(i)
		if err != nil {
			text = ""
		}
		pages = append(pages, chunker.Page{Number: i + 1, Text: text})
	}

	return pages, nil
}
