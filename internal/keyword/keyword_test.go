package keyword

import (
	"context"
	"strings"
	"testing"
)

func TestExtract_RanksAndLimits(t *testing.T) {
	e := New(3)
	words, err := e.Extract("The environmental assessment identified significant risks to the watershed. The watershed assessment continued for months.")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(words) > 3 {
		t.Fatalf("got %d keywords, want at most 3", len(words))
	}
	if len(words) == 0 {
		t.Fatal("expected at least one keyword")
	}
}

func TestExtract_DefaultTopK(t *testing.T) {
	e := New(0)
	if e.topK != DefaultTopK {
		t.Errorf("topK = %d, want default %d", e.topK, DefaultTopK)
	}
}

func TestExtract_EmptyText(t *testing.T) {
	e := New(5)
	words, err := e.Extract("")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	if len(words) != 0 {
		t.Errorf("got %d keywords for empty text, want 0", len(words))
	}
}

func TestExtract_FiltersStopWordsAndNumbers(t *testing.T) {
	e := New(10)
	words, err := e.Extract("the a an 123 456 and or but")
	if err != nil {
		t.Fatalf("Extract() error: %v", err)
	}
	for _, w := range words {
		if stopWords[w] {
			t.Errorf("stop word %q leaked into results", w)
		}
	}
}

func TestDocumentExtractor_ExtractAll_PreservesOrderAndSwallowsFailures(t *testing.T) {
	d := NewDocumentExtractor(New(5), 2)
	texts := []string{
		"Groundwater contamination was documented near the proposed pipeline route.",
		"",
		"Indigenous consultation records reference traditional land use studies.",
	}

	out, err := d.ExtractAll(context.Background(), texts)
	if err != nil {
		t.Fatalf("ExtractAll() error: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("got %d results, want 3", len(out))
	}
	if out[1] == nil {
		t.Error("expected non-nil (possibly empty) keyword slice for blank chunk")
	}
}

func TestDocumentExtractor_ExtractAll_Empty(t *testing.T) {
	d := NewDocumentExtractor(New(5), 4)
	out, err := d.ExtractAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("ExtractAll() error: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("got %d results, want 0", len(out))
	}
}

func TestDocumentExtractor_ExtractAll_CancelledContext(t *testing.T) {
	d := NewDocumentExtractor(New(5), 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	texts := []string{strings.Repeat("word ", 50)}
	if _, err := d.ExtractAll(ctx, texts); err == nil {
		t.Error("expected cancellation error")
	}
}
