package ocr

import (
	"context"
	"fmt"

	"github.com/gen2brain/go-fitz"

	"github.com/bcgov/epic-search-ingest/internal/chunker"
)

// DocumentRecognizer rasterizes every page of a PDF blob via go-fitz
// (the same page-image path the pack's OCR fallback uses,
// other_examples/ee9b3a8d_firdasafridi-pdf-chunk-extractor
// extractTextWithOCR) and recognizes each page through a Router.
type DocumentRecognizer struct {
	router *Router
	dpi    int
}

// NewDocumentRecognizer binds a Router and the rasterization DPI
// (spec §6 OCR_DPI).
func NewDocumentRecognizer(router *Router, dpi int) *DocumentRecognizer {
	if dpi <= 0 {
		dpi = 300
	}
	return &DocumentRecognizer{router: router, dpi: dpi}
}

// Recognize rasterizes and OCRs every page of data, returning one
// chunker.Page per page. A single page's OCR failure yields an empty
// page rather than aborting the document; the caller decides whether
// an all-empty result means the document should be marked
// ReasonOCRFailed.
func (d *DocumentRecognizer) Recognize(ctx context.Context, data []byte) ([]chunker.Page, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("ocr: open: %w", err)
	}
	defer doc.Close()

	numPages := doc.NumPage()
	pages := make([]chunker.Page, 0, numPages)

	for i := 0; i < numPages; i++ {
		img, err := doc.ImageDPI(i, float64(d.dpi))
		if err != nil {
			pages = append(pages, chunker.Page{Number: i + 1, Text: ""})
			continue
		}

		text, err := d.router.RecognizeText(ctx, img, i+1)
		if err != nil {
			pages = append(pages, chunker.Page{Number: i + 1, Text: ""})
			continue
		}
		pages = append(pages, chunker.Page{Number: i + 1, Text: text})
	}

	return pages, nil
}
