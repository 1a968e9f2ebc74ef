// Package embedder converts chunk text into fixed-dimension dense
// vectors, batching calls to the underlying model the way the teacher's
// EmbedderService does (internal/service/embedder.go), but lazily
// loading the model behind a sync.Once instead of assuming it is always
// warm (spec §4.4, §9: "lazy-loaded... thread-safe single
// initialization").
package embedder

import (
	"context"
	"fmt"
	"sync"
)

// Model abstracts the pluggable embedding backend. The one concrete
// implementation in this package is HTTPModel (httpmodel.go), which
// forwards to an external model-serving process.
type Model interface {
	// Load performs one-time, possibly expensive initialization (model
	// weights, ONNX session, etc).
	Load(ctx context.Context, modelName string) error
	// EmbedBatch returns one vector per input text, in order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// ErrDimensionMismatch is returned when a model produces vectors that
// don't match the configured dimension D.
type ErrDimensionMismatch struct {
	Got, Want int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("embedder: model produced %d-dim vector, want %d", e.Got, e.Want)
}

// Embedder lazily loads Model on first use and fans batches of chunk
// text through it in model-sized micro-batches.
type Embedder struct {
	model      Model
	modelName  string
	dimension  int
	batchSize  int

	once     sync.Once
	loadErr  error
}

// New creates an Embedder bound to a Model implementation. batchSize is
// the internal micro-batch size (spec §4.4: "micro-batch size is
// internal"); callers never see it.
func New(model Model, modelName string, dimension, batchSize int) *Embedder {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &Embedder{model: model, modelName: modelName, dimension: dimension, batchSize: batchSize}
}

func (e *Embedder) ensureLoaded(ctx context.Context) error {
	e.once.Do(func() {
		e.loadErr = e.model.Load(ctx, e.modelName)
	})
	return e.loadErr
}

// Embed returns one D-dim vector per input text, in input order,
// processing texts in internal micro-batches sequentially (spec §5:
// "embedding is batched sequentially because model calls are the
// bottleneck").
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := e.ensureLoaded(ctx); err != nil {
		return nil, fmt.Errorf("embedder.Embed: load model: %w", err)
	}

	out := make([][]float32, 0, len(texts))
	for i := 0; i < len(texts); i += e.batchSize {
		end := i + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vectors, err := e.model.EmbedBatch(ctx, texts[i:end])
		if err != nil {
			return nil, fmt.Errorf("embedder.Embed: batch %d-%d: %w", i, end, err)
		}
		if len(vectors) != end-i {
			return nil, fmt.Errorf("embedder.Embed: batch %d-%d: got %d vectors for %d texts", i, end, len(vectors), end-i)
		}
		for _, v := range vectors {
			if len(v) != e.dimension {
				return nil, &ErrDimensionMismatch{Got: len(v), Want: e.dimension}
			}
		}
		out = append(out, vectors...)
	}

	return out, nil
}
