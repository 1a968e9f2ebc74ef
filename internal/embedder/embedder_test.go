package embedder

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

type fakeModel struct {
	dim       int
	loadCalls int32
	loadErr   error
	embedErr  error
}

func (f *fakeModel) Load(ctx context.Context, name string) error {
	atomic.AddInt32(&f.loadCalls, 1)
	return f.loadErr
}

func (f *fakeModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, f.dim)
	}
	return out, nil
}

func TestEmbed_LazyLoadOnce(t *testing.T) {
	model := &fakeModel{dim: 8}
	e := New(model, "test-model", 8, 2)

	for i := 0; i < 3; i++ {
		if _, err := e.Embed(context.Background(), []string{"a", "b", "c"}); err != nil {
			t.Fatalf("Embed() error: %v", err)
		}
	}

	if model.loadCalls != 1 {
		t.Errorf("loadCalls = %d, want 1", model.loadCalls)
	}
}

func TestEmbed_Microbatching(t *testing.T) {
	model := &fakeModel{dim: 4}
	e := New(model, "test-model", 4, 2)

	vecs, err := e.Embed(context.Background(), []string{"a", "b", "c", "d", "e"})
	if err != nil {
		t.Fatalf("Embed() error: %v", err)
	}
	if len(vecs) != 5 {
		t.Fatalf("got %d vectors, want 5", len(vecs))
	}
}

func TestEmbed_DimensionMismatch(t *testing.T) {
	model := &fakeModel{dim: 4}
	e := New(model, "test-model", 768, 4)

	_, err := e.Embed(context.Background(), []string{"a"})
	var dimErr *ErrDimensionMismatch
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestEmbed_LoadFailure(t *testing.T) {
	model := &fakeModel{dim: 8, loadErr: errors.New("OOM")}
	e := New(model, "test-model", 8, 8)

	if _, err := e.Embed(context.Background(), []string{"a"}); err == nil {
		t.Fatal("expected load error to propagate")
	}
}

func TestEmbed_EmptyInput(t *testing.T) {
	model := &fakeModel{dim: 8}
	e := New(model, "test-model", 8, 8)

	vecs, err := e.Embed(context.Background(), nil)
	if err != nil || vecs != nil {
		t.Errorf("expected (nil, nil) for empty input, got (%v, %v)", vecs, err)
	}
}
