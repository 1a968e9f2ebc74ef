package keyword

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DocumentExtractor fans keyword extraction for one document's chunks
// across a bounded pool of T goroutines (spec §5's per-document keyword
// thread count), grounded on the errgroup+channel-semaphore concurrency
// shape used for per-page PDF processing in the pack's OCR-pipeline
// processor (internal/agent/document/pdf/processor.go).
type DocumentExtractor struct {
	extractor *Extractor
	maxThreads int
}

// NewDocumentExtractor binds an Extractor to a bounded concurrency
// budget. maxThreads <= 0 is treated as 1: one chunk is extracted at a
// time.
func NewDocumentExtractor(extractor *Extractor, maxThreads int) *DocumentExtractor {
	if maxThreads <= 0 {
		maxThreads = 1
	}
	return &DocumentExtractor{extractor: extractor, maxThreads: maxThreads}
}

// ExtractAll returns one keyword slice per input chunk text, in order.
// A single chunk's extraction failure never fails the document: it is
// swallowed and recorded as an empty keyword slice (spec §4.5: "keyword
// extraction failures are non-fatal"). Only context cancellation
// propagates as an error.
func (d *DocumentExtractor) ExtractAll(ctx context.Context, texts []string) ([][]string, error) {
	out := make([][]string, len(texts))
	if len(texts) == 0 {
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, d.maxThreads)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-gctx.Done():
				return gctx.Err()
			}

			words, err := d.extractor.Extract(text)
			if err != nil {
				out[i] = []string{}
				return nil
			}
			out[i] = words
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
