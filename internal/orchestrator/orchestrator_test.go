package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bcgov/epic-search-ingest/internal/model"
)

type fakeMetadata struct {
	projects  []model.Project
	documents map[string][]model.Document
	err       error
}

func (f *fakeMetadata) Projects(ctx context.Context) ([]model.Project, error) {
	return f.projects, f.err
}

func (f *fakeMetadata) Documents(ctx context.Context, projectID string) ([]model.Document, error) {
	return f.documents[projectID], nil
}

type fakeLogSource struct {
	mu         sync.Mutex
	mostRecent map[string]*model.ProcessingLog
	candidates map[string][]string // keyed by mode+":"+projectID
}

func (f *fakeLogSource) MostRecent(ctx context.Context, documentID string) (*model.ProcessingLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.mostRecent[documentID], nil
}

func (f *fakeLogSource) RetryCandidates(ctx context.Context, mode RetryMode, projectID string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.candidates[string(mode)+":"+projectID], nil
}

type fakeProcessor struct {
	mu        sync.Mutex
	processed []string
	result    model.Status
	delay     time.Duration
}

func (f *fakeProcessor) Process(ctx context.Context, doc model.Document) model.ProcessingLog {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return model.ProcessingLog{DocumentID: doc.ID, Status: model.StatusFailure, ValidationReason: "cancelled"}
		}
	}
	f.mu.Lock()
	f.processed = append(f.processed, doc.ID)
	f.mu.Unlock()
	status := f.result
	if status == "" {
		status = model.StatusSuccess
	}
	return model.ProcessingLog{DocumentID: doc.ID, Status: status}
}

func docs(ids ...string) []model.Document {
	out := make([]model.Document, len(ids))
	for i, id := range ids {
		out[i] = model.Document{ID: id, ProjectID: "proj-1"}
	}
	return out
}

func TestRun_AdmitsOnlyNonSuccessByDefault(t *testing.T) {
	meta := &fakeMetadata{
		projects:  []model.Project{{ID: "proj-1"}},
		documents: map[string][]model.Document{"proj-1": docs("d1", "d2", "d3")},
	}
	logs := &fakeLogSource{mostRecent: map[string]*model.ProcessingLog{
		"d1": {Status: model.StatusSuccess},
		"d2": {Status: model.StatusFailure},
	}}
	proc := &fakeProcessor{}
	o := New(meta, logs, proc, nil, Config{WorkerCount: 2})

	if err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := map[string]bool{"d2": true, "d3": true}
	if len(proc.processed) != len(want) {
		t.Fatalf("processed = %v, want 2 documents (d2, d3)", proc.processed)
	}
	for _, id := range proc.processed {
		if !want[id] {
			t.Errorf("unexpected document processed: %s", id)
		}
	}
}

func TestRun_RetryFailedOnlyAdmitsRetryCandidates(t *testing.T) {
	meta := &fakeMetadata{
		projects:  []model.Project{{ID: "proj-1"}},
		documents: map[string][]model.Document{"proj-1": docs("d1", "d2", "d3")},
	}
	logs := &fakeLogSource{candidates: map[string][]string{"failed:proj-1": {"d2"}}}
	proc := &fakeProcessor{}
	o := New(meta, logs, proc, nil, Config{WorkerCount: 2, RetryMode: RetryFailed})

	if err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(proc.processed) != 1 || proc.processed[0] != "d2" {
		t.Errorf("processed = %v, want exactly [d2]", proc.processed)
	}
}

func TestRun_RetrySkippedOnlyAdmitsRetryCandidates(t *testing.T) {
	meta := &fakeMetadata{
		projects:  []model.Project{{ID: "proj-1"}},
		documents: map[string][]model.Document{"proj-1": docs("d1", "d2")},
	}
	logs := &fakeLogSource{candidates: map[string][]string{"skipped:proj-1": {"d1"}}}
	proc := &fakeProcessor{}
	o := New(meta, logs, proc, nil, Config{WorkerCount: 1, RetryMode: RetrySkipped})

	if err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(proc.processed) != 1 || proc.processed[0] != "d1" {
		t.Errorf("processed = %v, want exactly [d1]", proc.processed)
	}
}

func TestRun_ShallowCapsDocumentsPerProject(t *testing.T) {
	meta := &fakeMetadata{
		projects:  []model.Project{{ID: "proj-1"}},
		documents: map[string][]model.Document{"proj-1": docs("d1", "d2", "d3", "d4")},
	}
	logs := &fakeLogSource{}
	proc := &fakeProcessor{}
	o := New(meta, logs, proc, nil, Config{WorkerCount: 2, Shallow: 2})

	if err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(proc.processed) != 2 {
		t.Errorf("processed = %v, want exactly 2 documents (shallow cap)", proc.processed)
	}
}

func TestRun_ProjectAllowlistFiltersDiscovery(t *testing.T) {
	meta := &fakeMetadata{
		projects: []model.Project{{ID: "proj-1"}, {ID: "proj-2"}},
		documents: map[string][]model.Document{
			"proj-1": docs("d1"),
			"proj-2": docs("d2"),
		},
	}
	logs := &fakeLogSource{}
	proc := &fakeProcessor{}
	o := New(meta, logs, proc, nil, Config{WorkerCount: 2, ProjectIDs: []string{"proj-2"}})

	if err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(proc.processed) != 1 || proc.processed[0] != "d2" {
		t.Errorf("processed = %v, want exactly [d2]", proc.processed)
	}
}

func TestRun_BudgetExpiryStopsDiscoveryAndDrains(t *testing.T) {
	docIDs := make([]string, 0, 20)
	for i := 0; i < 20; i++ {
		docIDs = append(docIDs, string(rune('a'+i)))
	}
	meta := &fakeMetadata{
		projects:  []model.Project{{ID: "proj-1"}},
		documents: map[string][]model.Document{"proj-1": docs(docIDs...)},
	}
	logs := &fakeLogSource{}
	proc := &fakeProcessor{delay: 50 * time.Millisecond}
	o := New(meta, logs, proc, nil, Config{WorkerCount: 2, Budget: 30 * time.Millisecond, DrainTimeout: time.Second})

	start := time.Now()
	if err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	elapsed := time.Since(start)

	if elapsed > 2*time.Second {
		t.Errorf("Run() took %v, expected budget expiry to bound the run", elapsed)
	}
	if len(proc.processed) == len(docIDs) {
		t.Errorf("expected budget expiry to prevent processing all %d documents, got all processed", len(docIDs))
	}
}

func TestRun_ExplicitZeroBudgetProcessesNothing(t *testing.T) {
	meta := &fakeMetadata{
		projects:  []model.Project{{ID: "proj-1"}},
		documents: map[string][]model.Document{"proj-1": docs("d1", "d2")},
	}
	logs := &fakeLogSource{}
	proc := &fakeProcessor{}
	o := New(meta, logs, proc, nil, Config{WorkerCount: 2, Budget: 0, BudgetSet: true})

	if err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(proc.processed) != 0 {
		t.Errorf("processed = %v, want none for an explicit zero-minute budget", proc.processed)
	}
}

func TestRun_MetricsReflectOutcomes(t *testing.T) {
	meta := &fakeMetadata{
		projects:  []model.Project{{ID: "proj-1"}},
		documents: map[string][]model.Document{"proj-1": docs("d1", "d2")},
	}
	logs := &fakeLogSource{}
	proc := &fakeProcessor{result: model.StatusFailure}
	metrics := NewMetrics()
	o := New(meta, logs, proc, metrics, Config{WorkerCount: 2})

	if err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	snap := metrics.snapshot()
	if snap.processed != 2 || snap.failed != 2 || snap.succeeded != 0 {
		t.Errorf("snapshot = %+v, want processed=2 failed=2", snap)
	}
	if snap.active != 0 {
		t.Errorf("active workers = %d after Run returned, want 0", snap.active)
	}
}

func TestRun_ProjectDiscoveryErrorIsNotFatal(t *testing.T) {
	meta := &fakeMetadata{err: errors.New("upstream unreachable")}
	logs := &fakeLogSource{}
	proc := &fakeProcessor{}
	o := New(meta, logs, proc, nil, Config{WorkerCount: 1})

	if err := o.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v, want nil (discovery errors are logged, not fatal)", err)
	}
	if len(proc.processed) != 0 {
		t.Errorf("processed = %v, want none", proc.processed)
	}
}

func TestNew_AppliesDefaults(t *testing.T) {
	o := New(&fakeMetadata{}, &fakeLogSource{}, &fakeProcessor{}, nil, Config{})
	if o.cfg.WorkerCount != 1 {
		t.Errorf("WorkerCount default = %d, want 1", o.cfg.WorkerCount)
	}
	if o.cfg.DrainTimeout != defaultDrainTimeout {
		t.Errorf("DrainTimeout default = %v, want %v", o.cfg.DrainTimeout, defaultDrainTimeout)
	}
}
