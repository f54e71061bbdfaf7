package formatter

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nguyentantai21042004/speech-digest/internal/blob"
	"github.com/nguyentantai21042004/speech-digest/internal/layout"
	"github.com/nguyentantai21042004/speech-digest/internal/logger"
)

const recognitionDoc = `{"results": {
  "speaker_labels": {"segments": [
    {"speaker_label": "spk_0", "items": [{"start_time": "0.0"}]},
    {"speaker_label": "spk_1", "items": [{"start_time": "1.0"}]}
  ]},
  "items": [
    {"type": "pronunciation", "start_time": "0.0", "alternatives": [{"content": "Hi"}]},
    {"type": "punctuation", "alternatives": [{"content": "."}]},
    {"type": "pronunciation", "start_time": "1.0", "alternatives": [{"content": "Hello"}]}
  ]}}`

func newFixture(t *testing.T) (Formatter, *blob.Memory) {
	t.Helper()
	store := blob.NewMemory("bucket")
	return New(store, layout.Default(), logger.Discard()), store
}

func TestHandleWritesFormattedTranscript(t *testing.T) {
	ctx := context.Background()
	f, store := newFixture(t)
	if err := store.Put(ctx, "transcripciones/job-1.json", []byte(recognitionDoc)); err != nil {
		t.Fatal(err)
	}

	res, err := f.Handle(ctx, "transcripciones/job-1.json")
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if res.Skipped || res.JobName != "job-1" || res.OutputKey != "transcripciones-formateadas/job-1.txt" {
		t.Errorf("Handle() = %+v", res)
	}

	data, err := store.Get(ctx, res.OutputKey)
	if err != nil {
		t.Fatal(err)
	}
	want := "\n\nspk_0: Hi.\n\nspk_1: Hello"
	if string(data) != want {
		t.Errorf("transcript = %q, want %q", data, want)
	}
}

func TestHandleIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f, store := newFixture(t)
	if err := store.Put(ctx, "transcripciones/job-1.json", []byte(recognitionDoc)); err != nil {
		t.Fatal(err)
	}

	var outputs []string
	for i := 0; i < 2; i++ {
		res, err := f.Handle(ctx, "transcripciones/job-1.json")
		if err != nil {
			t.Fatalf("Handle() #%d error = %v", i+1, err)
		}
		data, err := store.Get(ctx, res.OutputKey)
		if err != nil {
			t.Fatal(err)
		}
		outputs = append(outputs, string(data))
	}
	if outputs[0] != outputs[1] {
		t.Errorf("outputs differ: %q vs %q", outputs[0], outputs[1])
	}
}

func TestHandleSkipsForeignKeys(t *testing.T) {
	ctx := context.Background()
	f, store := newFixture(t)

	for _, key := range []string{
		"transcripciones/job-1.txt",
		"audios/job-1.json",
		"transcripciones/.write_access_check_file.temp",
	} {
		res, err := f.Handle(ctx, key)
		if err != nil || !res.Skipped {
			t.Errorf("Handle(%q) = (%+v, %v), want skipped", key, res, err)
		}
	}
	if store.Puts() != 0 {
		t.Errorf("store writes = %d, want 0", store.Puts())
	}
}

func TestHandleSurfacesFailures(t *testing.T) {
	ctx := context.Background()
	f, store := newFixture(t)

	if _, err := f.Handle(ctx, "transcripciones/missing.json"); err == nil {
		t.Error("Handle() on missing object error = nil, want error")
	}

	if err := store.Put(ctx, "transcripciones/broken.json", []byte("{")); err != nil {
		t.Fatal(err)
	}
	if _, err := f.Handle(ctx, "transcripciones/broken.json"); err == nil {
		t.Error("Handle() on malformed object error = nil, want error")
	}
	if ok, _ := store.Exists(ctx, "transcripciones-formateadas/broken.txt"); ok {
		t.Error("transcript written for malformed input")
	}
}

func TestHandleWithFilesystemStore(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	store, err := blob.NewFS(root, "bucket")
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Put(ctx, "transcripciones/job-9.json", []byte(recognitionDoc)); err != nil {
		t.Fatal(err)
	}

	f := New(store, layout.Default(), logger.Discard())
	if _, err := f.Handle(ctx, "transcripciones/job-9.json"); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	data, err := os.ReadFile(filepath.Join(root, "transcripciones-formateadas", "job-9.txt"))
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !strings.Contains(string(data), "spk_1: Hello") {
		t.Errorf("transcript = %q", data)
	}
}
