package embedder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// HTTPModel calls a local model-serving sidecar over HTTP, the same
// request/response/error-wrapping shape the teacher uses to call Vertex AI
// (internal/gcpclient/embedding.go: http.NewRequestWithContext, a JSON
// instances/predictions envelope, status-code-aware error wrapping),
// generalized away from any one vendor's wire format since the concrete
// embedding backend is a pluggable interface here, not a fixed vendor.
type HTTPModel struct {
	endpoint string
	client   *http.Client
}

// NewHTTPModel creates an HTTPModel that posts to endpoint (spec §6
// EMBEDDING_SERVICE_URL).
func NewHTTPModel(endpoint string) *HTTPModel {
	return &HTTPModel{endpoint: endpoint, client: &http.Client{}}
}

// Load is a no-op: HTTPModel delegates model warm-up to whatever
// process answers at endpoint.
func (m *HTTPModel) Load(ctx context.Context, modelName string) error {
	return nil
}

type httpEmbedRequest struct {
	Texts []string `json:"texts"`
}

type httpEmbedResponse struct {
	Vectors [][]float32 `json:"vectors"`
}

// EmbedBatch implements Model by POSTing texts to the configured
// sidecar and decoding one vector per text, in order.
func (m *HTTPModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	body, err := json.Marshal(httpEmbedRequest{Texts: texts})
	if err != nil {
		return nil, fmt.Errorf("embedder.HTTPModel.EmbedBatch: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("embedder.HTTPModel.EmbedBatch: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embedder.HTTPModel.EmbedBatch: call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedder.HTTPModel.EmbedBatch: status %d: %s", resp.StatusCode, detail)
	}

	var out httpEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("embedder.HTTPModel.EmbedBatch: decode response: %w", err)
	}
	if len(out.Vectors) != len(texts) {
		return nil, fmt.Errorf("embedder.HTTPModel.EmbedBatch: got %d vectors for %d texts", len(out.Vectors), len(texts))
	}
	return out.Vectors, nil
}
