package pipeline

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/nguyentantai21042004/speech-digest/internal/blob"
	"github.com/nguyentantai21042004/speech-digest/internal/failure"
	"github.com/nguyentantai21042004/speech-digest/internal/formatter"
	"github.com/nguyentantai21042004/speech-digest/internal/layout"
	"github.com/nguyentantai21042004/speech-digest/internal/logger"
	"github.com/nguyentantai21042004/speech-digest/internal/summarizer"
)

// fakeFormatter writes a placeholder transcript for every recognition key.
type fakeFormatter struct {
	mu    sync.Mutex
	store blob.Store
	keys  []string
	err   error
}

func (f *fakeFormatter) Handle(ctx context.Context, key string) (formatter.Result, error) {
	f.mu.Lock()
	f.keys = append(f.keys, key)
	f.mu.Unlock()
	if f.err != nil {
		return formatter.Result{}, f.err
	}
	job, _ := layout.Default().JobFromRecognitionKey(key)
	out := layout.Default().FormattedKey(job)
	if err := f.store.Put(ctx, out, []byte("text")); err != nil {
		return formatter.Result{}, err
	}
	return formatter.Result{JobName: job, OutputKey: out}, nil
}

type fakeSummarizer struct {
	mu      sync.Mutex
	keys    []string
	outcome summarizer.Outcome
	err     error
}

func (f *fakeSummarizer) Handle(ctx context.Context, key string) (summarizer.Outcome, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return f.outcome, f.err
}

func newFixture() (*implProcessor, *blob.Memory, *fakeFormatter, *fakeSummarizer) {
	store := blob.NewMemory("bucket")
	f := &fakeFormatter{store: store}
	s := &fakeSummarizer{outcome: summarizer.Outcome{Status: summarizer.StatusCompleted}}
	p := New(store, layout.Default(), f, s, logger.Discard(), 2).(*implProcessor)
	return p, store, f, s
}

func TestAccepts(t *testing.T) {
	p, _, _, _ := newFixture()
	tests := []struct {
		key  string
		want bool
	}{
		{"transcripciones/job.json", true},
		{"transcripciones-formateadas/job.txt", true},
		{"audios/job.mp3", false},
		{"resumenes/job_summary.txt", false},
		{"transcripciones/nested/job.json", false},
	}
	for _, tt := range tests {
		if got := p.Accepts(tt.key); got != tt.want {
			t.Errorf("Accepts(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestProcessRoutes(t *testing.T) {
	ctx := context.Background()
	p, _, f, s := newFixture()

	for _, key := range []string{"transcripciones/a.json", "transcripciones-formateadas/b.txt", "resumenes/c_summary.txt"} {
		if err := p.Process(ctx, key); err != nil {
			t.Fatalf("Process(%q) error = %v", key, err)
		}
	}
	if !reflect.DeepEqual(f.keys, []string{"transcripciones/a.json"}) {
		t.Errorf("formatter keys = %v", f.keys)
	}
	if !reflect.DeepEqual(s.keys, []string{"transcripciones-formateadas/b.txt"}) {
		t.Errorf("summarizer keys = %v", s.keys)
	}
}

func TestProcessSurfacesFormatterErrors(t *testing.T) {
	p, _, f, _ := newFixture()
	f.err = errors.New("bad json")

	if err := p.Process(context.Background(), "transcripciones/a.json"); err == nil {
		t.Error("Process() error = nil, want formatter error")
	}
}

func TestProcessFailedSummaryIsNotAnError(t *testing.T) {
	p, _, _, s := newFixture()
	rec := failure.Record{Status: failure.StatusFailed, ErrorKind: failure.KindUpstreamRejected}
	s.outcome = summarizer.Outcome{Status: summarizer.StatusFailed, Failure: &rec, FailureKey: "resumenes/b_FAILED.json"}

	if err := p.Process(context.Background(), "transcripciones-formateadas/b.txt"); err != nil {
		t.Errorf("Process() error = %v, want nil", err)
	}
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	p, store, f, s := newFixture()
	objects := map[string]string{
		"transcripciones/done.json":                    "{}",
		"transcripciones-formateadas/done.txt":         "text",
		"resumenes/done_summary.txt":                   "- ok",
		"transcripciones/failed.json":                  "{}",
		"transcripciones-formateadas/failed.txt":       "text",
		"resumenes/failed_FAILED.json":                 "{}",
		"transcripciones/new.json":                     "{}",
		"transcripciones-formateadas/unsummarized.txt": "text",
	}
	for key, body := range objects {
		if err := store.Put(ctx, key, []byte(body)); err != nil {
			t.Fatal(err)
		}
	}

	n, err := p.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Reconcile() = %d, want 2", n)
	}
	if !reflect.DeepEqual(f.keys, []string{"transcripciones/new.json"}) {
		t.Errorf("formatted = %v", f.keys)
	}
	// new.txt is written by the format pass; its creation event summarizes it.
	want := []string{"transcripciones-formateadas/unsummarized.txt"}
	if !reflect.DeepEqual(s.keys, want) {
		t.Errorf("summarized = %v, want %v", s.keys, want)
	}
	if ok, _ := store.Exists(ctx, "transcripciones-formateadas/new.txt"); !ok {
		t.Error("new.txt not formatted")
	}
}

func TestReconcileCollectsErrors(t *testing.T) {
	ctx := context.Background()
	p, store, f, _ := newFixture()
	f.err = errors.New("bad json")
	if err := store.Put(ctx, "transcripciones/x.json", []byte("{}")); err != nil {
		t.Fatal(err)
	}

	n, err := p.Reconcile(ctx)
	if err == nil {
		t.Error("Reconcile() error = nil, want error")
	}
	if n != 0 {
		t.Errorf("Reconcile() = %d, want 0", n)
	}
}
