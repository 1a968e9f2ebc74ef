// Package ingest implements DocumentProcessor, the per-document state
// machine (fetching -> validating -> {extracting | ocr-extracting |
// skipping | failing} -> chunking -> embedding -> persisting -> logged)
// that drives a single attempt end to end. Grounded on the teacher's own
// multi-stage PipelineService (internal/service/pipeline.go: parse ->
// scan -> chunk -> embed -> update status, narrow per-stage interfaces
// declared alongside the service, slog bracketing each step), with the
// parse/redact/store stages replaced by PDF inspection, OCR routing and
// chunk persistence.
package ingest

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/bcgov/epic-search-ingest/internal/chunker"
	"github.com/bcgov/epic-search-ingest/internal/failure"
	"github.com/bcgov/epic-search-ingest/internal/model"
	"github.com/bcgov/epic-search-ingest/internal/pdfinspect"
)

// objectFetcher abstracts blob retrieval for testability.
type objectFetcher interface {
	Fetch(ctx context.Context, key string) ([]byte, int64, error)
}

// pdfInspector abstracts first-page classification for testability.
type pdfInspector interface {
	Inspect(data []byte) (*pdfinspect.Report, error)
}

// textExtractor abstracts full-document text extraction for testability.
type textExtractor interface {
	Extract(data []byte) ([]chunker.Page, error)
}

// ocrRecognizer abstracts page rasterization + OCR for testability.
type ocrRecognizer interface {
	Recognize(ctx context.Context, data []byte) ([]chunker.Page, error)
}

// pageChunker abstracts the sliding-window splitter for testability.
type pageChunker interface {
	Chunk(pages []chunker.Page) []chunker.Chunk
}

// chunkEmbedder abstracts the embedding call for testability.
type chunkEmbedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// chunkKeywordExtractor abstracts bounded per-document keyword
// extraction for testability.
type chunkKeywordExtractor interface {
	ExtractAll(ctx context.Context, texts []string) ([][]string, error)
}

// projectUpserter abstracts project persistence for testability.
type projectUpserter interface {
	Upsert(ctx context.Context, p model.Project) error
}

// documentUpserter abstracts document persistence for testability.
type documentUpserter interface {
	Upsert(ctx context.Context, d model.Document, rollup model.DocumentRollup) error
}

// chunkInserter abstracts batched chunk persistence for testability.
type chunkInserter interface {
	InsertAll(ctx context.Context, documentID string, chunks []model.Chunk) error
}

// logAppender abstracts the processing log ledger for testability.
type logAppender interface {
	Append(ctx context.Context, log model.ProcessingLog) error
}

// minPdfMagicLen is the smallest byte count a PDF can ever have a
// "%PDF" signature within.
const minPdfMagicLen = 4

// Processor runs one document through the full state machine and writes
// exactly one ProcessingLog entry per attempt.
type Processor struct {
	fetcher   objectFetcher
	inspector pdfInspector
	extractor textExtractor
	ocr       ocrRecognizer // nil when OCR_ENABLED=false
	chunker   pageChunker
	embedder  chunkEmbedder
	keywords  chunkKeywordExtractor
	projects  projectUpserter
	documents documentUpserter
	chunks    chunkInserter
	logs      logAppender

	ocrEnabled bool
}

// New creates a Processor. ocr may be nil iff ocrEnabled is false.
func New(
	fetcher objectFetcher,
	inspector pdfInspector,
	extractor textExtractor,
	ocr ocrRecognizer,
	ocrEnabled bool,
	chunker pageChunker,
	embedder chunkEmbedder,
	keywords chunkKeywordExtractor,
	projects projectUpserter,
	documents documentUpserter,
	chunks chunkInserter,
	logs logAppender,
) *Processor {
	return &Processor{
		fetcher:    fetcher,
		inspector:  inspector,
		extractor:  extractor,
		ocr:        ocr,
		ocrEnabled: ocrEnabled,
		chunker:    chunker,
		embedder:   embedder,
		keywords:   keywords,
		projects:   projects,
		documents:  documents,
		chunks:     chunks,
		logs:       logs,
	}
}

// attempt accumulates per-stage timing and the final outcome across
// Process's state transitions.
type attempt struct {
	projectID  string
	documentID string
	stages     []model.StageTiming
	startedAt  time.Time
}

func (a *attempt) record(stage string, start time.Time) {
	a.stages = append(a.stages, model.StageTiming{Stage: stage, DurationMs: time.Since(start).Milliseconds()})
}

// Process runs doc through fetching, validating, extraction/OCR,
// chunking, embedding and persisting, and always appends exactly one
// ProcessingLog row describing the outcome (spec §4.7: the processor
// boundary never lets an uncaught exception escape).
func (p *Processor) Process(ctx context.Context, doc model.Document) model.ProcessingLog {
	a := &attempt{projectID: doc.ProjectID, documentID: doc.ID, startedAt: time.Now()}

	log := func() (result model.ProcessingLog) {
		defer func() {
			if r := recover(); r != nil {
				result = p.outcome(a, doc, model.StatusFailure, failure.ReasonUnexpectedError,
					failure.Truncate(fmt.Sprintf("panic: %v\n%s", r, debug.Stack())))
			}
		}()
		return p.run(ctx, a, doc)
	}()

	if err := p.logs.Append(ctx, log); err != nil {
		slog.Error("ingest: failed to append processing log", "document_id", doc.ID, "project_id", doc.ProjectID, "error", err)
	}
	return log
}

func (p *Processor) run(ctx context.Context, a *attempt, doc model.Document) model.ProcessingLog {
	slog.Info("ingest: processing document", "document_id", doc.ID, "project_id", doc.ProjectID, "stage", "fetching")

	if err := ctx.Err(); err != nil {
		return p.fail(ctx, a, doc, failure.ReasonCancelled, err)
	}

	// 1. fetching
	start := time.Now()
	data, size, err := p.fetcher.Fetch(ctx, doc.ObjectKey)
	a.record("fetching", start)
	if err != nil {
		return p.fail(ctx, a, doc, failure.ReasonFetchError, err)
	}
	doc.Metadata.FileSize = size
	doc.Metadata.Checksum = sha256Hex(data)

	if !looksLikePDF(data) {
		return p.outcome(a, doc, model.StatusSkipped, failure.ReasonPrecheckFailed, "")
	}

	// 2. validating
	start = time.Now()
	report, err := p.inspector.Inspect(data)
	a.record("validating", start)
	if err != nil {
		return p.fail(ctx, a, doc, failure.ReasonPDFParseError, err)
	}
	doc.Metadata.Producer = report.Producer
	doc.Metadata.Creator = report.Creator
	doc.Metadata.PageCount = report.PageCount
	doc.Metadata.Format = model.PDFFormatInfo{Producer: report.Producer, Creator: report.Creator, PageCount: report.PageCount}

	// A document row is created as soon as PDF metadata is captured,
	// independent of whether a later stage fails (spec §3: "created
	// lazily at first successful validation or at failure-with-
	// metadata"). The rollup columns (keywords/tags/embedding) are
	// still empty here; persisting fills them in once known.
	if err := p.projects.Upsert(ctx, model.Project{ID: doc.ProjectID}); err != nil {
		return p.fail(ctx, a, doc, failure.ReasonDBWriteFailed, err)
	}
	if err := p.documents.Upsert(ctx, doc, model.DocumentRollup{}); err != nil {
		return p.fail(ctx, a, doc, failure.ReasonDBWriteFailed, err)
	}

	var pages []chunker.Page
	extractionMethod := "text"

	switch report.Classification {
	case pdfinspect.Extractable:
		start = time.Now()
		pages, err = p.extractor.Extract(data)
		a.record("extracting", start)
		if err != nil {
			return p.fail(ctx, a, doc, failure.ReasonPDFParseError, err)
		}
		if totalChars(pages) == 0 {
			if !p.ocrEnabled {
				return p.fail(ctx, a, doc, failure.ReasonEmptyText, nil)
			}
			pages, extractionMethod, err = p.runOCR(ctx, a, data, pages, true)
			if err != nil {
				return p.fail(ctx, a, doc, failure.ReasonOCRFailed, err)
			}
		}

	case pdfinspect.ScannedDevice, pdfinspect.NoText:
		if !p.ocrEnabled {
			return p.outcome(a, doc, model.StatusSkipped, failure.ReasonScannedOrImagePDF, "")
		}

		var fallbackPages []chunker.Page
		qualityEnhancement := report.Classification == pdfinspect.ScannedDevice
		if qualityEnhancement {
			start = time.Now()
			fallbackPages, err = p.extractor.Extract(data)
			a.record("extracting", start)
			if err != nil {
				fallbackPages = nil
			}
		}

		pages, extractionMethod, err = p.runOCR(ctx, a, data, fallbackPages, qualityEnhancement)
		if err != nil {
			return p.fail(ctx, a, doc, failure.ReasonOCRFailed, err)
		}

	default:
		return p.fail(ctx, a, doc, failure.ReasonPDFParseError, fmt.Errorf("unknown classification %q", report.Classification))
	}

	// 5. chunking
	start = time.Now()
	chunks := p.chunker.Chunk(pages)
	a.record("chunking", start)
	if len(chunks) == 0 {
		return p.fail(ctx, a, doc, failure.ReasonEmptyAfterChunking, nil)
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	// 6. embedding
	start = time.Now()
	vectors, err := p.embedder.Embed(ctx, texts)
	a.record("embedding", start)
	if err != nil {
		return p.fail(ctx, a, doc, failure.ReasonEmbeddingFailed, err)
	}

	// 7. persisting
	start = time.Now()
	keywordSets, err := p.keywords.ExtractAll(ctx, texts)
	if err != nil {
		a.record("persisting", start)
		return p.fail(ctx, a, doc, failure.ReasonCancelled, err)
	}

	persisted := make([]model.Chunk, len(chunks))
	for i, c := range chunks {
		persisted[i] = model.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			ProjectID:  doc.ProjectID,
			PageNumber: c.PageNumber,
			Content:    c.Text,
			Embedding:  vectors[i],
			Metadata: model.ChunkMetadata{
				DocumentName:     doc.Name,
				ObjectKey:        doc.ObjectKey,
				ExtractionMethod: extractionMethod,
				Document:         doc.Metadata,
				Keywords:         keywordSets[i],
			},
		}
	}

	if err := p.chunks.InsertAll(ctx, doc.ID, persisted); err != nil {
		a.record("persisting", start)
		return p.fail(ctx, a, doc, failure.ReasonDBWriteFailed, err)
	}
	if err := p.documents.Upsert(ctx, doc, rollupDocument(keywordSets, vectors)); err != nil {
		a.record("persisting", start)
		return p.fail(ctx, a, doc, failure.ReasonDBWriteFailed, err)
	}
	a.record("persisting", start)

	log := p.outcome(a, doc, model.StatusSuccess, failure.ReasonNone, "")
	log.Metrics.ChunkCount = len(persisted)
	log.Metrics.ExtractionMethod = extractionMethod
	return log
}

// runOCR rasterizes and recognizes data via the configured OCR
// provider. If the resulting pages carry no usable text at all, it
// falls back to fallbackPages when qualityEnhancement is true (the
// document already had extractable text and OCR was only attempted to
// improve it); otherwise it reports failure (spec §4.2 step 4).
func (p *Processor) runOCR(ctx context.Context, a *attempt, data []byte, fallbackPages []chunker.Page, qualityEnhancement bool) ([]chunker.Page, string, error) {
	start := time.Now()
	pages, err := p.ocr.Recognize(ctx, data)
	a.record("ocr-extracting", start)
	if err != nil {
		if qualityEnhancement && totalChars(fallbackPages) > 0 {
			return fallbackPages, "text", nil
		}
		return nil, "", err
	}

	if totalChars(pages) == 0 {
		if qualityEnhancement && totalChars(fallbackPages) > 0 {
			return fallbackPages, "text", nil
		}
		return nil, "", fmt.Errorf("ingest: ocr produced no usable text")
	}

	return pages, "ocr", nil
}

// fail reports a stage failure, re-classifying it as reason=cancelled
// whenever ctx was already cancelled by the time the stage returned —
// the orchestrator's shutdown signal takes precedence over whatever
// stage-specific error a cancelled context happened to surface as
// (spec §5: "Workers finish the current I/O call, then exit their
// document with a failure log reason=cancelled").
func (p *Processor) fail(ctx context.Context, a *attempt, doc model.Document, reason failure.Reason, err error) model.ProcessingLog {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	if ctx.Err() != nil {
		reason = failure.ReasonCancelled
		if msg == "" {
			msg = ctx.Err().Error()
		}
	}
	return p.outcome(a, doc, model.StatusFailure, reason, msg)
}

func (p *Processor) outcome(a *attempt, doc model.Document, status model.Status, reason failure.Reason, errDetail string) model.ProcessingLog {
	log := model.ProcessingLog{
		DocumentID:       doc.ID,
		ProjectID:        doc.ProjectID,
		Status:           status,
		ValidationReason: string(reason),
		ProcessedAt:      time.Now(),
		DocumentMetadata: doc.Metadata,
		Metrics: model.Metrics{
			Stages:      a.stages,
			FailureKind: string(reason),
		},
	}
	if errDetail != "" {
		log.Metrics.ErrorTruncated = failure.Truncate(errDetail)
	}

	level := slog.LevelInfo
	if status == model.StatusFailure {
		level = slog.LevelError
	}
	slog.Log(context.Background(), level, "ingest: document attempt finished",
		"document_id", doc.ID, "project_id", doc.ProjectID, "status", status, "reason", reason)

	return log
}

// rollupDocument aggregates a document's per-chunk keyword sets into a
// deduplicated, sorted document-level keyword/tag list, and its chunk
// vectors into a single centroid embedding (spec §6:
// documents.document_keywords/document_tags/embedding). There is no
// separate tag-extraction pipeline, so keywords and tags are rolled up
// from the same per-chunk output.
func rollupDocument(keywordSets [][]string, vectors [][]float32) model.DocumentRollup {
	seen := make(map[string]bool)
	var unique []string
	for _, kws := range keywordSets {
		for _, kw := range kws {
			if kw == "" || seen[kw] {
				continue
			}
			seen[kw] = true
			unique = append(unique, kw)
		}
	}
	sort.Strings(unique)

	var centroid []float32
	if len(vectors) > 0 && len(vectors[0]) > 0 {
		dim := len(vectors[0])
		sum := make([]float64, dim)
		for _, v := range vectors {
			for i, f := range v {
				sum[i] += float64(f)
			}
		}
		centroid = make([]float32, dim)
		for i, s := range sum {
			centroid[i] = float32(s / float64(len(vectors)))
		}
	}

	return model.DocumentRollup{Keywords: unique, Tags: unique, Embedding: centroid}
}

func totalChars(pages []chunker.Page) int {
	n := 0
	for _, pg := range pages {
		n += len([]rune(pg.Text))
	}
	return n
}

func sha256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// looksLikePDF is the magic-byte precheck (spec §4.2: "non-PDF content
// (magic-byte check fails)"). PDFs may carry a handful of bytes of
// leading whitespace/garbage before the header per the PDF spec, so this
// scans the first kilobyte rather than requiring the signature at
// offset zero.
func looksLikePDF(data []byte) bool {
	if len(data) < minPdfMagicLen {
		return false
	}
	scanWindow := data
	if len(scanWindow) > 1024 {
		scanWindow = scanWindow[:1024]
	}
	return bytes.Contains(scanWindow, []byte("%PDF-"))
}
