package model

import "time"

// PDFFormatInfo captures the PDF-structural facts PdfInspector gathers
// while classifying a blob, independent of whether extraction ultimately
// succeeds.
type PDFFormatInfo struct {
	Producer     string `json:"producer,omitempty"`
	Creator      string `json:"creator,omitempty"`
	PageCount    int    `json:"pageCount,omitempty"`
	IsEncrypted  bool   `json:"isEncrypted,omitempty"`
	PDFVersion   string `json:"pdfVersion,omitempty"`
}

// DocumentMetadata is the inspection-derived snapshot stored against a
// Document and embedded (read-only copy) into every Chunk produced from it.
type DocumentMetadata struct {
	Producer  string        `json:"producer,omitempty"`
	Creator   string        `json:"creator,omitempty"`
	PageCount int           `json:"pageCount,omitempty"`
	FileSize  int64         `json:"fileSizeBytes"`
	Format    PDFFormatInfo `json:"pdfFormat"`
	Checksum  string        `json:"checksumSha256,omitempty"`
}

// Document is a single object-store blob belonging to a Project. It is
// created lazily at first successful validation or at failure-with-
// metadata, and is never updated in place: a subsequent successful
// reprocess replaces its chunk set under the same document id.
type Document struct {
	ID         string           `json:"id"`
	ProjectID  string           `json:"projectId"`
	Name       string           `json:"name"`
	ObjectKey  string           `json:"objectKey"`
	Metadata   DocumentMetadata `json:"metadata"`
	CreatedAt  time.Time        `json:"createdAt"`
}

// DocumentRollup aggregates the per-chunk keyword output and vectors of
// a document's chunk set into the document-level columns (spec §6:
// document_keywords, document_tags, document_headings, embedding).
// Computed once chunking/keyword-extraction/embedding have run; zero
// value until then.
type DocumentRollup struct {
	Keywords  []string
	Tags      []string
	Headings  []string
	Embedding []float32
}
