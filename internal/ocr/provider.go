// Package ocr routes scanned-document pages through a pluggable OCR
// backend. Concrete cloud backends are out of scope (spec §1's
// Non-goals name only the interface as in-scope); the local
// tesseract-cli backend is grounded on the pack's own OCR fallback
// shape (other_examples/ee9b3a8d_firdasafridi-pdf-chunk-extractor,
// runTesseract) since it needs no network dependency to exercise.
package ocr

import (
	"context"
	"fmt"
	"image"
)

// Provider performs OCR on a single rasterized page image.
type Provider interface {
	// Name identifies the provider for logging and config matching.
	Name() string
	// RecognizeText returns the text found in img.
	RecognizeText(ctx context.Context, img image.Image, pageNumber int) (string, error)
}

// Router selects one configured Provider by name. There is no
// automatic cross-provider fallback (spec §4.2): if the configured
// provider fails, the page is marked unrecognized.
type Router struct {
	providers map[string]Provider
	selected  string
}

// NewRouter registers providers and pins the router to the provider
// named selected.
func NewRouter(selected string, providers ...Provider) (*Router, error) {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name()] = p
	}
	if _, ok := byName[selected]; !ok {
		return nil, fmt.Errorf("ocr: no provider registered for %q", selected)
	}
	return &Router{providers: byName, selected: selected}, nil
}

// RecognizeText delegates to the configured provider.
func (r *Router) RecognizeText(ctx context.Context, img image.Image, pageNumber int) (string, error) {
	return r.providers[r.selected].RecognizeText(ctx, img, pageNumber)
}
