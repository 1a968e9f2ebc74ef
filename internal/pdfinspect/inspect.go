// Package pdfinspect performs the cheap first-page probe that decides
// whether a fetched PDF needs OCR before the full text extraction runs
// (spec §4.2). Grounded on the pack's MuPDF-based extractor
// (niski84-the-hive/internal/pdf/processor.go opens documents with
// gen2brain/go-fitz; the scanning-device heuristic generalizes the
// page-by-page OCR-fallback shape seen in the OCR-pipeline PDF
// processor, other_examples/ee9b3a8d_firdasafridi-pdf-chunk-extractor).
package pdfinspect

import (
	"fmt"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Classification is the outcome of probing a PDF's first page.
type Classification string

const (
	// Extractable means direct text extraction should proceed normally.
	Extractable Classification = "extractable"
	// ScannedDevice means the document metadata carries a scanning
	// device signature and the first page yielded too little text to
	// trust; route to OCR.
	ScannedDevice Classification = "scanned_device"
	// NoText means the first page produced no usable text and no
	// scanning-device signature was found; still routed to OCR, but
	// distinguished from ScannedDevice for logging/metrics purposes.
	NoText Classification = "no_text"
)

// minFirstPageChars below this threshold the first page is considered to
// have produced no usable text (spec §4.2).
const minFirstPageChars = 50

// minScannedDeviceChars below this threshold, combined with a scanning
// device signature, routes the document to OCR even though some text
// was extracted (spec §4.2).
const minScannedDeviceChars = 200

// Report describes the outcome of inspecting one PDF.
type Report struct {
	Producer       string
	Creator        string
	PageCount      int
	FirstPageChars int
	Classification Classification
}

// Inspector opens PDF blobs in-memory and classifies them without
// running the full per-page extraction.
type Inspector struct{}

// New creates an Inspector.
func New() *Inspector {
	return &Inspector{}
}

// Inspect opens the PDF held in data and classifies it from its
// metadata and first page. A corrupt or encrypted-without-password PDF
// surfaces as an error; callers translate that into
// failure.ReasonPDFParseError.
func (i *Inspector) Inspect(data []byte) (*Report, error) {
	doc, err := fitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("pdfinspect: open: %w", err)
	}
	defer doc.Close()

	meta, err := doc.Metadata()
	if err != nil {
		meta = map[string]string{}
	}

	report := &Report{
		Producer:  meta["producer"],
		Creator:   meta["creator"],
		PageCount: doc.NumPage(),
	}

	if report.PageCount == 0 {
		return nil, fmt.Errorf("pdfinspect: document has no pages")
	}

	firstPageText, err := doc.Text(0)
	if err != nil {
		firstPageText = ""
	}
	firstPageText = strings.TrimSpace(firstPageText)
	report.FirstPageChars = len([]rune(firstPageText))

	report.Classification = classify(report.Producer, report.Creator, report.FirstPageChars)

	return report, nil
}

// classify applies the spec §4.2 thresholds in isolation from the
// go-fitz document handle so the decision table is unit-testable
// without a real PDF.
func classify(producer, creator string, firstPageChars int) Classification {
	deviceSignature := hasScanningDeviceSignature(producer, creator)

	switch {
	case deviceSignature && firstPageChars < minScannedDeviceChars:
		return ScannedDevice
	case firstPageChars < minFirstPageChars:
		return NoText
	default:
		return Extractable
	}
}
