package summarizer

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/nguyentantai21042004/speech-digest/internal/blob"
	"github.com/nguyentantai21042004/speech-digest/internal/failure"
	"github.com/nguyentantai21042004/speech-digest/internal/generation"
	"github.com/nguyentantai21042004/speech-digest/internal/layout"
	"github.com/nguyentantai21042004/speech-digest/internal/logger"
)

type fakeGenerator struct {
	mu      sync.Mutex
	text    string
	err     error
	prompts []string
	params  []generation.Params
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string, params generation.Params) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	f.params = append(f.params, params)
	return f.text, f.err
}

// contextGenerator fails the way a network client does once ctx is cancelled.
type contextGenerator struct {
	cancel context.CancelFunc
}

func (g contextGenerator) Generate(ctx context.Context, prompt string, params generation.Params) (string, error) {
	g.cancel()
	<-ctx.Done()
	return "", failure.New(failure.KindUnexpected, "generate content", ctx.Err())
}

type failingPutStore struct {
	*blob.Memory
}

func (f failingPutStore) Put(ctx context.Context, key string, body []byte) error {
	return errors.New("bucket is read-only")
}

const transcriptKey = "transcripciones-formateadas/transcription-job-7.txt"

var params = generation.Params{MaxTokens: 1024, Temperature: 0.3, TopP: 0.9}

func newFixture(t *testing.T, gen generation.Generator) (Summarizer, *blob.Memory) {
	t.Helper()
	store := blob.NewMemory("bucket")
	if err := store.Put(context.Background(), transcriptKey, []byte("\n\nspk_0: Hola, buenos días.")); err != nil {
		t.Fatal(err)
	}
	return New(store, gen, params, layout.Default(), logger.Discard()), store
}

func TestHandleWritesSummary(t *testing.T) {
	ctx := context.Background()
	gen := &fakeGenerator{text: "- Saludo inicial"}
	s, store := newFixture(t, gen)

	outcome, err := s.Handle(ctx, transcriptKey)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	wantKey := "resumenes/transcription-job-7_summary.txt"
	if outcome.Status != StatusCompleted || outcome.Output != wantKey || outcome.Failure != nil {
		t.Errorf("Handle() = %+v", outcome)
	}
	data, err := store.Get(ctx, wantKey)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "- Saludo inicial" {
		t.Errorf("summary = %q", data)
	}

	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "TEXT START\n\n\nspk_0: Hola, buenos días.\nTEXT END") {
		t.Errorf("prompt does not embed transcript verbatim: %q", gen.prompts)
	}
	if gen.params[0] != params {
		t.Errorf("params = %+v, want %+v", gen.params[0], params)
	}
}

func TestHandleIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s, store := newFixture(t, &fakeGenerator{text: "- same"})

	var outputs []string
	for i := 0; i < 2; i++ {
		outcome, err := s.Handle(ctx, transcriptKey)
		if err != nil {
			t.Fatal(err)
		}
		data, err := store.Get(ctx, outcome.Output)
		if err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, string(data))
	}
	if outputs[0] != outputs[1] {
		t.Errorf("summaries differ: %q vs %q", outputs[0], outputs[1])
	}
}

func TestHandleWritesSentinelOnGenerationFailure(t *testing.T) {
	ctx := context.Background()
	upstream := failure.WithCode(failure.KindUpstreamTransient, "generate content", "RESOURCE_EXHAUSTED", errors.New("quota"))
	s, store := newFixture(t, &fakeGenerator{err: upstream})

	outcome, err := s.Handle(ctx, transcriptKey)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	wantKey := "resumenes/transcription-job-7_FAILED.json"
	if outcome.Status != StatusFailed || outcome.FailureKey != wantKey {
		t.Fatalf("Handle() = %+v", outcome)
	}

	data, err := store.Get(ctx, wantKey)
	if err != nil {
		t.Fatalf("sentinel not written: %v", err)
	}
	rec, err := failure.ParseRecord(data)
	if err != nil {
		t.Fatal(err)
	}
	want := failure.Record{Status: "FAILED", ErrorKind: failure.KindUpstreamTransient, Detail: "RESOURCE_EXHAUSTED"}
	if rec != want {
		t.Errorf("sentinel = %+v, want %+v", rec, want)
	}
	if ok, _ := store.Exists(ctx, "resumenes/transcription-job-7_summary.txt"); ok {
		t.Error("summary written despite failure")
	}
}

func TestHandleWritesSentinelOnUnexpectedFailure(t *testing.T) {
	ctx := context.Background()
	s, store := newFixture(t, &fakeGenerator{err: errors.New("connection reset")})

	outcome, err := s.Handle(ctx, transcriptKey)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if outcome.Failure == nil || outcome.Failure.ErrorKind != failure.KindUnexpected {
		t.Fatalf("Handle() = %+v", outcome)
	}
	if outcome.Failure.Detail != "connection reset" {
		t.Errorf("detail = %q", outcome.Failure.Detail)
	}
	if ok, _ := store.Exists(ctx, outcome.FailureKey); !ok {
		t.Error("sentinel missing")
	}
}

func TestHandleCancelledWritesNoSentinel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	s, store := newFixture(t, contextGenerator{cancel: cancel})

	outcome, err := s.Handle(ctx, transcriptKey)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Handle() error = %v, want context.Canceled", err)
	}
	if outcome.Status == StatusFailed || outcome.Failure != nil {
		t.Errorf("Handle() = %+v, want no failure outcome", outcome)
	}
	for _, key := range []string{"resumenes/transcription-job-7_FAILED.json", "resumenes/transcription-job-7_summary.txt"} {
		if ok, _ := store.Exists(context.Background(), key); ok {
			t.Errorf("%s written after cancellation", key)
		}
	}
}

func TestHandleMissingTranscript(t *testing.T) {
	ctx := context.Background()
	s, store := newFixture(t, &fakeGenerator{text: "unused"})

	outcome, err := s.Handle(ctx, "transcripciones-formateadas/ghost.txt")
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if outcome.Status != StatusFailed {
		t.Errorf("Status = %v, want FAILED", outcome.Status)
	}
	if ok, _ := store.Exists(ctx, "resumenes/ghost_FAILED.json"); !ok {
		t.Error("sentinel missing for unreadable transcript")
	}
}

func TestHandleReturnsErrorWhenSentinelCannotBeWritten(t *testing.T) {
	ctx := context.Background()
	mem := blob.NewMemory("bucket")
	if err := mem.Put(ctx, transcriptKey, []byte("text")); err != nil {
		t.Fatal(err)
	}
	s := New(failingPutStore{mem}, &fakeGenerator{text: "- ok"}, params, layout.Default(), logger.Discard())

	outcome, err := s.Handle(ctx, transcriptKey)
	if err == nil {
		t.Fatal("Handle() error = nil, want error")
	}
	if outcome.Status != StatusFailed {
		t.Errorf("Status = %v, want FAILED", outcome.Status)
	}
}

func TestHandleSkipsForeignKeys(t *testing.T) {
	gen := &fakeGenerator{text: "unused"}
	s, _ := newFixture(t, gen)

	for _, key := range []string{"transcripciones/job.json", "resumenes/job_summary.txt", ""} {
		outcome, err := s.Handle(context.Background(), key)
		if err != nil || outcome.Status != StatusSkipped {
			t.Errorf("Handle(%q) = (%+v, %v), want skipped", key, outcome, err)
		}
	}
	if len(gen.prompts) != 0 {
		t.Errorf("generator called %d times, want 0", len(gen.prompts))
	}
}

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("hello")
	for _, want := range []string{
		"concise bullet list",
		"Do NOT repeat sentences",
		"Do NOT include separators, tables",
		"Preserve the original language",
		"TEXT START\nhello\nTEXT END",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}
