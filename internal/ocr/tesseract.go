package ocr

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
)

// TesseractProvider shells out to the tesseract CLI the same way the
// pack's OCR-pipeline extractor does (write page raster to a temp PNG,
// invoke tesseract, read stdout, remove the temp file).
type TesseractProvider struct {
	language string
}

// NewTesseractProvider creates a local Provider using language (an ISO
// 639-2 tesseract language code, e.g. "eng").
func NewTesseractProvider(language string) *TesseractProvider {
	if language == "" {
		language = "eng"
	}
	return &TesseractProvider{language: language}
}

// Name implements Provider.
func (t *TesseractProvider) Name() string { return "tesseract" }

// RecognizeText implements Provider.
func (t *TesseractProvider) RecognizeText(ctx context.Context, img image.Image, pageNumber int) (string, error) {
	tmp, err := os.CreateTemp("", fmt.Sprintf("ocr-page-%d-*.png", pageNumber))
	if err != nil {
		return "", fmt.Errorf("ocr: create temp image: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return "", fmt.Errorf("ocr: encode page image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("ocr: close temp image: %w", err)
	}

	cmd := exec.CommandContext(ctx, "tesseract", tmpPath, "stdout", "-l", t.language)
	output, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("ocr: tesseract failed on page %d: %w", pageNumber, err)
	}

	return string(output), nil
}
