// Package objectstore fetches PDF blobs from an S3-compatible object
// store. The dependency surface (aws-sdk-go-v2 core, config,
// service/s3 and feature/s3/manager) is grounded on the pack's own
// usage of that stack (other_examples manifests for
// smartramana-developer-mesh, aqua777-go-llamaindex,
// goadesign-goa-ai all pull the same modules); no single example
// wires an S3 GetObject call end to end, so the client construction
// here follows the SDK's own documented config loading pattern
// (aws.Config via config.LoadDefaultConfig with a static credentials
// provider and a custom endpoint resolver for S3-compatible stores),
// and Fetch uses the manager package's concurrent-part Downloader
// rather than a single GetObject+io.Copy, since submission PDFs can
// run large enough that parallelizing the GET is worth it.
package objectstore

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// fetchTimeout bounds a single GetObject call (spec §4.1).
const fetchTimeout = 60 * time.Second

// downloadPartSize matches the manager package's own default part size;
// named explicitly so it reads as a deliberate choice, not a magic 0.
const downloadPartSize = manager.DefaultDownloadPartSize

// getObjectAPI is the s3.Client surface Fetcher depends on, narrowed so
// tests can supply a fake instead of a live bucket. It is also the
// exact method set manager.GetObjectAPIClient requires, so a fake
// built against this interface works as the Downloader's client too.
type getObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Fetcher retrieves object bytes from one S3-compatible bucket.
type Fetcher struct {
	downloader *manager.Downloader
	bucket     string
}

// New builds a Fetcher pointed at an S3-compatible endpoint (e.g. a
// MinIO or on-prem object store) using static credentials, the shape
// spec §6's S3_* configuration variables describe.
func New(ctx context.Context, endpointURI, region, accessKeyID, secretAccessKey, bucket string) (*Fetcher, error) {
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("objectstore: load aws config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpointURI != "" {
			o.BaseEndpoint = aws.String(endpointURI)
		}
		o.UsePathStyle = true
	})

	return newFetcher(client, bucket), nil
}

func newFetcher(client getObjectAPI, bucket string) *Fetcher {
	return &Fetcher{
		downloader: manager.NewDownloader(client, func(d *manager.Downloader) { d.PartSize = downloadPartSize }),
		bucket:     bucket,
	}
}

// Fetch retrieves the full contents of key, returning its bytes and
// size. The call is bounded by fetchTimeout regardless of the parent
// context's own deadline, so one slow GetObject can't stall a worker
// indefinitely (spec §4.1).
func (f *Fetcher) Fetch(ctx context.Context, key string) ([]byte, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	buf := manager.NewWriteAtBuffer(nil)
	size, err := f.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(f.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("objectstore: get %q: %w", key, err)
	}

	return buf.Bytes(), size, nil
}
