// Command epicsearch-ingest discovers projects and documents from the
// configured metadata API, extracts/OCRs/chunks/embeds/keyword-tags
// each one, and persists the result to Postgres/pgvector, logging one
// processing-log row per attempt (spec §6's CLI surface).
//
// Signal handling and the run/shutdown split follow the teacher's own
// cmd/server/main.go (os/signal on SIGINT/SIGTERM, bounded shutdown
// context), generalized from an HTTP server's accept-loop to the
// orchestrator's worker-pool drain.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bcgov/epic-search-ingest/internal/chunker"
	"github.com/bcgov/epic-search-ingest/internal/config"
	"github.com/bcgov/epic-search-ingest/internal/embedder"
	"github.com/bcgov/epic-search-ingest/internal/ingest"
	"github.com/bcgov/epic-search-ingest/internal/keyword"
	"github.com/bcgov/epic-search-ingest/internal/metadataclient"
	"github.com/bcgov/epic-search-ingest/internal/model"
	"github.com/bcgov/epic-search-ingest/internal/objectstore"
	"github.com/bcgov/epic-search-ingest/internal/ocr"
	"github.com/bcgov/epic-search-ingest/internal/orchestrator"
	"github.com/bcgov/epic-search-ingest/internal/pdfinspect"
	"github.com/bcgov/epic-search-ingest/internal/store"
	"github.com/bcgov/epic-search-ingest/internal/textextract"
)

// exit codes per spec §6.
const (
	exitOK             = 0
	exitInvalidArgs    = 2
	exitStartupFailure = 3
)

// cliArgs mirrors the cobra flag surface before it is translated into
// an orchestrator.Config.
type cliArgs struct {
	projectIDs      []string
	retryFailed     bool
	retrySkipped    bool
	shallow         int
	timedMinutes    int
	timedExplicit   bool
	skipHNSWIndexes bool
}

func main() {
	var args cliArgs

	root := &cobra.Command{
		Use:           "epicsearch-ingest",
		Short:         "Discover, extract, embed and index documents into pgvector",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			args.timedExplicit = cmd.Flags().Changed("timed")
			return runWithArgs(cmd.Context(), args)
		},
	}

	root.Flags().StringArrayVar(&args.projectIDs, "project_id", nil, "restrict to this project (repeatable); absent = all")
	root.Flags().BoolVar(&args.retryFailed, "retry-failed", false, "admit only documents whose last log is failure")
	root.Flags().BoolVar(&args.retrySkipped, "retry-skipped", false, "admit only documents whose last log is skipped")
	root.Flags().IntVar(&args.shallow, "shallow", 0, "at most N documents per project")
	root.Flags().IntVar(&args.timedMinutes, "timed", 0, "wall-clock budget in minutes")
	root.Flags().BoolVar(&args.skipHNSWIndexes, "skip-hnsw-indexes", false, "do not build the ANN index on the chunk vector column")
	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &exitError{code: exitInvalidArgs, err: err}
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		code := exitStartupFailure
		var ee *exitError
		if errors.As(err, &ee) {
			code = ee.code
		}
		slog.Error("epicsearch-ingest: exiting", "error", err, "exit_code", code)
		os.Exit(code)
	}
	os.Exit(exitOK)
}

// exitError pairs an error with the specific spec §6 exit code it maps
// to, so main can distinguish invalid-argument failures from startup
// failures without string-matching error text.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func runWithArgs(ctx context.Context, args cliArgs) error {
	if args.retryFailed && args.retrySkipped {
		return &exitError{code: exitInvalidArgs, err: fmt.Errorf("--retry-failed and --retry-skipped are mutually exclusive")}
	}

	cfg, err := config.Load()
	if err != nil {
		return &exitError{code: exitStartupFailure, err: err}
	}

	workerCount, err := config.ResolveWorkerCount(cfg.FilesConcurrencySize, 0)
	if err != nil {
		return &exitError{code: exitInvalidArgs, err: err}
	}
	keywordThreads, err := config.ResolveKeywordThreads(cfg.KeywordExtractionWorkers, 0)
	if err != nil {
		return &exitError{code: exitInvalidArgs, err: err}
	}

	fetcher, err := objectstore.New(ctx, cfg.S3EndpointURI, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretAccessKey, cfg.S3BucketName)
	if err != nil {
		return &exitError{code: exitStartupFailure, err: fmt.Errorf("epicsearch-ingest: object store: %w", err)}
	}

	metadata := metadataclient.New(cfg.DocumentSearchURL, cfg.GetProjectPage, cfg.GetDocsPage)

	pool, err := store.NewPool(ctx, cfg.VectorDBURL, workerCount, workerCount)
	if err != nil {
		return &exitError{code: exitStartupFailure, err: fmt.Errorf("epicsearch-ingest: db pool: %w", err)}
	}
	defer pool.Close()

	if err := store.EnsureSchema(ctx, pool, cfg.EmbeddingDimensions, cfg.AutoCreatePgvectorExtension, args.skipHNSWIndexes); err != nil {
		return &exitError{code: exitStartupFailure, err: fmt.Errorf("epicsearch-ingest: schema: %w", err)}
	}

	locks := store.NewDocumentLocks(workerCount)
	projects := store.NewProjectRepo(pool)
	documents := store.NewDocumentRepo(pool)
	chunks := store.NewChunkRepo(pool, locks, cfg.ChunkInsertBatchSize)
	logs := store.NewLogRepo(pool)

	inspector := pdfinspect.New()
	extractor := textextract.New()

	var ocrRecognizer *ocr.DocumentRecognizer
	if cfg.OCREnabled {
		var provider ocr.Provider
		switch cfg.OCRProvider {
		case "azure":
			provider = ocr.NewAzureProvider(os.Getenv("AZURE_OCR_ENDPOINT"), os.Getenv("AZURE_OCR_API_KEY"))
		default:
			provider = ocr.NewTesseractProvider(cfg.OCRLanguage)
		}
		router, err := ocr.NewRouter(provider.Name(), provider)
		if err != nil {
			return &exitError{code: exitStartupFailure, err: fmt.Errorf("epicsearch-ingest: ocr router: %w", err)}
		}
		ocrRecognizer = ocr.NewDocumentRecognizer(router, cfg.OCRDPI)
	}

	textChunker := chunker.New(cfg.ChunkSize, cfg.ChunkOverlap)
	embeddingModel := embedder.NewHTTPModel(cfg.EmbeddingServiceURL)
	embed := embedder.New(embeddingModel, cfg.EmbeddingModelName, cfg.EmbeddingDimensions, 32)
	keywords := keyword.NewDocumentExtractor(keyword.New(keyword.DefaultTopK), keywordThreads)

	processor := ingest.New(
		fetcher,
		inspector,
		extractor,
		ocrRecognizer,
		cfg.OCREnabled,
		textChunker,
		embed,
		keywords,
		projects,
		documents,
		chunks,
		logs,
	)

	retryMode := orchestrator.RetryNone
	switch {
	case args.retryFailed:
		retryMode = orchestrator.RetryFailed
	case args.retrySkipped:
		retryMode = orchestrator.RetrySkipped
	}

	metrics := orchestrator.NewMetrics()
	o := orchestrator.New(
		metadata,
		&retryLogAdapter{logs: logs},
		processor,
		metrics,
		orchestrator.Config{
			ProjectIDs:   args.projectIDs,
			RetryMode:    retryMode,
			Shallow:      args.shallow,
			Budget:       time.Duration(args.timedMinutes) * time.Minute,
			BudgetSet:    args.timedExplicit,
			WorkerCount:  workerCount,
			DrainTimeout: 60 * time.Second,
		},
	)

	return o.Run(ctx)
}

// retryLogAdapter bridges store.LogRepo's RetryCandidates (which takes
// a store.RetryMode) to orchestrator's logSource interface (which takes
// an orchestrator.RetryMode) — the two packages intentionally don't
// import one another.
type retryLogAdapter struct {
	logs *store.LogRepo
}

func (a *retryLogAdapter) MostRecent(ctx context.Context, documentID string) (*model.ProcessingLog, error) {
	return a.logs.MostRecent(ctx, documentID)
}

func (a *retryLogAdapter) RetryCandidates(ctx context.Context, mode orchestrator.RetryMode, projectID string) ([]string, error) {
	var storeMode store.RetryMode
	switch mode {
	case orchestrator.RetryFailed:
		storeMode = store.RetryFailed
	case orchestrator.RetrySkipped:
		storeMode = store.RetrySkipped
	default:
		storeMode = store.RetryNone
	}
	return a.logs.RetryCandidates(ctx, storeMode, projectID)
}
