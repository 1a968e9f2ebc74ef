package objectstore

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type fakeGetObjectAPI struct {
	body string
	err  error
}

func (f *fakeGetObjectAPI) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &s3.GetObjectOutput{
		Body: io.NopCloser(strings.NewReader(f.body)),
	}, nil
}

func TestFetch_ReturnsBytesAndSize(t *testing.T) {
	f := newFetcher(&fakeGetObjectAPI{body: "%PDF-1.4 fake contents"}, "submissions")

	data, size, err := f.Fetch(context.Background(), "proj/doc.pdf")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(data) != "%PDF-1.4 fake contents" {
		t.Errorf("data = %q", data)
	}
	if size != int64(len("%PDF-1.4 fake contents")) {
		t.Errorf("size = %d, want %d", size, len("%PDF-1.4 fake contents"))
	}
}

func TestFetch_PropagatesError(t *testing.T) {
	f := newFetcher(&fakeGetObjectAPI{err: errors.New("NoSuchKey")}, "submissions")

	if _, _, err := f.Fetch(context.Background(), "missing.pdf"); err == nil {
		t.Error("expected error to propagate")
	}
}
