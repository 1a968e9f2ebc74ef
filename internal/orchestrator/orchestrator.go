// Package orchestrator discovers projects and documents, applies
// retry/admission filtering, and drives a bounded worker pool of
// DocumentProcessors (spec §4.1). Grounded on the pack's own worker
// pool (niski84-the-hive/internal/worker/worker.go StartWorkers: a
// WaitGroup of goroutines pulling from a shared channel, each honoring
// ctx cancellation) and the teacher's signal-driven graceful shutdown
// (TicoDavid-RAGbox.co/backend/cmd/server/main.go: select on a signal
// channel vs. a server error channel, then a bounded shutdown context).
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/bcgov/epic-search-ingest/internal/model"
)

// RetryMode selects which previously-processed documents are admitted
// on this run (spec §4.1).
type RetryMode string

const (
	RetryNone    RetryMode = ""
	RetryFailed  RetryMode = "failed"
	RetrySkipped RetryMode = "skipped"
)

// defaultDrainTimeout is applied when Config.DrainTimeout is unset
// (spec §5: "Drain timeout default 60s").
const defaultDrainTimeout = 60 * time.Second

// metadataSource abstracts project/document discovery for testability.
type metadataSource interface {
	Projects(ctx context.Context) ([]model.Project, error)
	Documents(ctx context.Context, projectID string) ([]model.Document, error)
}

// logSource abstracts the processing log ledger for testability.
type logSource interface {
	MostRecent(ctx context.Context, documentID string) (*model.ProcessingLog, error)
	RetryCandidates(ctx context.Context, mode RetryMode, projectID string) ([]string, error)
}

// documentProcessor abstracts the per-document state machine for
// testability.
type documentProcessor interface {
	Process(ctx context.Context, doc model.Document) model.ProcessingLog
}

// Config is one invocation's scheduling configuration (spec §4.1
// "Inputs").
type Config struct {
	// ProjectIDs restricts discovery to these projects; empty means all.
	ProjectIDs []string
	// RetryMode selects the admission filter (spec §4.1 "Operations").
	RetryMode RetryMode
	// Shallow caps admitted documents per project; 0 means unlimited.
	Shallow int
	// Budget bounds the whole run's wall-clock time; 0 means unlimited
	// unless BudgetSet is true.
	Budget time.Duration
	// BudgetSet distinguishes an explicit --timed 0 from an omitted
	// flag: Budget==0 only means "unlimited" when BudgetSet is false.
	// An explicit zero budget completes with zero documents processed
	// (spec §8).
	BudgetSet bool
	// WorkerCount is W, the worker pool size (spec §5).
	WorkerCount int
	// DrainTimeout bounds how long Run waits for in-flight documents
	// after cancellation before abandoning them.
	DrainTimeout time.Duration
}

// Orchestrator drives one end-to-end run: project/document discovery,
// admission filtering, worker-pool dispatch, progress reporting and
// graceful shutdown.
type Orchestrator struct {
	metadata  metadataSource
	logs      logSource
	processor documentProcessor
	metrics   *Metrics
	reporter  *ProgressReporter
	cfg       Config
}

// New creates an Orchestrator. cfg.WorkerCount and cfg.DrainTimeout
// fall back to 1 and defaultDrainTimeout respectively when unset.
func New(metadata metadataSource, logs logSource, processor documentProcessor, metrics *Metrics, cfg Config) *Orchestrator {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 1
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = defaultDrainTimeout
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Orchestrator{
		metadata:  metadata,
		logs:      logs,
		processor: processor,
		metrics:   metrics,
		reporter:  NewProgressReporter(metrics),
		cfg:       cfg,
	}
}

// Run discovers and processes every admitted document, respecting the
// configured wall-clock budget, and returns once every dispatched
// document has finished or the drain timeout has been exceeded. Run
// itself only returns an error for a fatal, orchestrator-level
// condition; per-document failures never surface here (they are
// recorded in the processing log).
func (o *Orchestrator) Run(ctx context.Context) error {
	if o.cfg.BudgetSet && o.cfg.Budget == 0 {
		slog.Info("orchestrator: time budget is zero, discovering and processing nothing")
		return nil
	}

	runCtx := ctx
	if o.cfg.Budget > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, o.cfg.Budget)
		defer cancel()
	}

	reportCtx, stopReporter := context.WithCancel(context.Background())
	defer stopReporter()
	go o.reporter.Run(reportCtx)

	tasks := make(chan model.Document, o.cfg.WorkerCount*2)
	go o.dispatch(runCtx, tasks)

	var wg sync.WaitGroup
	wg.Add(o.cfg.WorkerCount)
	for i := 0; i < o.cfg.WorkerCount; i++ {
		workerID := i + 1
		go func() {
			defer wg.Done()
			o.workerLoop(runCtx, workerID, tasks)
		}()
	}

	drained := make(chan struct{})
	go func() {
		wg.Wait()
		close(drained)
	}()

	select {
	case <-drained:
	case <-runCtx.Done():
		select {
		case <-drained:
		case <-time.After(o.cfg.DrainTimeout):
			slog.Warn("orchestrator: drain timeout exceeded, abandoning in-flight documents",
				"drain_timeout", o.cfg.DrainTimeout)
		}
	}

	return nil
}

// dispatch discovers projects and documents and feeds admitted
// documents to tasks, closing it when discovery completes or runCtx is
// cancelled (spec §4.1: "stops accepting new projects and new
// documents" on budget expiry or shutdown).
func (o *Orchestrator) dispatch(ctx context.Context, tasks chan<- model.Document) {
	defer close(tasks)

	wanted := make(map[string]bool, len(o.cfg.ProjectIDs))
	for _, id := range o.cfg.ProjectIDs {
		wanted[id] = true
	}

	projects, err := o.metadata.Projects(ctx)
	if err != nil {
		slog.Error("orchestrator: failed to list projects", "error", err)
		return
	}

	for _, project := range projects {
		if ctx.Err() != nil {
			return
		}
		if len(wanted) > 0 && !wanted[project.ID] {
			continue
		}

		docs, err := o.metadata.Documents(ctx, project.ID)
		if err != nil {
			slog.Error("orchestrator: failed to list documents", "project_id", project.ID, "error", err)
			continue
		}

		admitted, err := o.admit(ctx, project.ID, docs)
		if err != nil {
			slog.Error("orchestrator: admission filtering failed", "project_id", project.ID, "error", err)
			continue
		}

		if o.cfg.Shallow > 0 && len(admitted) > o.cfg.Shallow {
			admitted = admitted[:o.cfg.Shallow]
		}

		for _, doc := range admitted {
			select {
			case tasks <- doc:
			case <-ctx.Done():
				return
			}
		}
	}
}

// admit applies the spec §4.1 retry-mode admission rule: retry-mode
// none skips documents whose most recent log is success; failed/
// skipped modes admit only documents whose most recent log matches.
func (o *Orchestrator) admit(ctx context.Context, projectID string, docs []model.Document) ([]model.Document, error) {
	if o.cfg.RetryMode != RetryNone {
		ids, err := o.logs.RetryCandidates(ctx, o.cfg.RetryMode, projectID)
		if err != nil {
			return nil, fmt.Errorf("retry candidates: %w", err)
		}
		eligible := make(map[string]bool, len(ids))
		for _, id := range ids {
			eligible[id] = true
		}
		var out []model.Document
		for _, d := range docs {
			if eligible[d.ID] {
				out = append(out, d)
			}
		}
		return out, nil
	}

	var out []model.Document
	for _, d := range docs {
		latest, err := o.logs.MostRecent(ctx, d.ID)
		if err != nil {
			return nil, fmt.Errorf("most recent log for %s: %w", d.ID, err)
		}
		if latest != nil && latest.Status == model.StatusSuccess {
			continue
		}
		out = append(out, d)
	}
	return out, nil
}

func (o *Orchestrator) workerLoop(ctx context.Context, workerID int, tasks <-chan model.Document) {
	for doc := range tasks {
		o.metrics.workerStarted()
		result := o.processor.Process(ctx, doc)
		o.metrics.recordOutcome(result.Status)
		o.metrics.workerFinished()
		slog.Info("orchestrator: worker finished document", "worker_id", workerID, "document_id", doc.ID, "status", result.Status)
	}
}
