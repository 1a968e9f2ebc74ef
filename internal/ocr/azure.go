package ocr

import (
	"context"
	"fmt"
	"image"
)

// AzureProvider is the interface seam for a cloud OCR backend
// (spec §1: concrete OCR backends beyond the interface are out of
// scope). It satisfies Provider so the Router can be pinned to
// "azure" in configuration, but RecognizeText is not implemented here.
type AzureProvider struct {
	endpoint string
	apiKey   string
}

// NewAzureProvider creates a Provider shell for an Azure Computer
// Vision / Document Intelligence-backed OCR service.
func NewAzureProvider(endpoint, apiKey string) *AzureProvider {
	return &AzureProvider{endpoint: endpoint, apiKey: apiKey}
}

// Name implements Provider.
func (a *AzureProvider) Name() string { return "azure" }

// RecognizeText implements Provider. The concrete HTTP call to Azure's
// OCR API is out of scope; wiring it in means adding an
// azure-sdk-for-go client and replacing this body.
func (a *AzureProvider) RecognizeText(ctx context.Context, img image.Image, pageNumber int) (string, error) {
	return "", fmt.Errorf("ocr: azure provider not implemented (page %d)", pageNumber)
}
