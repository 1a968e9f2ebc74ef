// Package failure defines the fixed validation-reason taxonomy (spec §7)
// as a typed enum, so a stage can never report a freeform string where the
// orchestrator and PersistenceStore expect one of these exact codes.
package failure

// Reason is one of the enumerated validation_reason values. The zero value
// means "no reason recorded" (used for success logs).
type Reason string

const (
	ReasonNone               Reason = ""
	ReasonPrecheckFailed     Reason = "precheck_failed"
	ReasonScannedOrImagePDF  Reason = "scanned_or_image_pdf"
	ReasonOCRFailed          Reason = "ocr_failed"
	ReasonPDFParseError      Reason = "pdf_parse_error"
	ReasonFetchError         Reason = "fetch_error"
	ReasonEmptyText          Reason = "empty_text"
	ReasonEmptyAfterChunking Reason = "empty_after_chunking"
	ReasonEmbeddingFailed    Reason = "embedding_failed"
	ReasonDBWriteFailed      Reason = "db_write_failed"
	ReasonCancelled          Reason = "cancelled"
	ReasonUnexpectedError    Reason = "unexpected_error"
)

// skippedReasons are the validation reasons that pair with status=skipped;
// everything else (when non-empty) pairs with status=failure.
var skippedReasons = map[Reason]bool{
	ReasonPrecheckFailed:    true,
	ReasonScannedOrImagePDF: true,
}

// IsSkip reports whether a reason represents an intentional skip rather
// than a failed attempt.
func (r Reason) IsSkip() bool {
	return skippedReasons[r]
}
