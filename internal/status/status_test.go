package status

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/nguyentantai21042004/speech-digest/internal/blob"
	"github.com/nguyentantai21042004/speech-digest/internal/failure"
	"github.com/nguyentantai21042004/speech-digest/internal/layout"
	"github.com/nguyentantai21042004/speech-digest/internal/logger"
	"github.com/nguyentantai21042004/speech-digest/internal/recognition"
)

type fakeService struct {
	status recognition.Status
	err    error
	calls  int
}

func (f *fakeService) StartJob(ctx context.Context, spec recognition.JobSpec) error {
	return nil
}

func (f *fakeService) JobStatus(ctx context.Context, jobName string) (recognition.Status, error) {
	f.calls++
	return f.status, f.err
}

const job = "transcription-job-1"

func put(t *testing.T, store blob.Store, key, body string) {
	t.Helper()
	if err := store.Put(context.Background(), key, []byte(body)); err != nil {
		t.Fatal(err)
	}
}

func TestCheckStatus(t *testing.T) {
	l := layout.Default()
	sentinel := `{"status":"FAILED","errorKind":"UPSTREAM_TRANSIENT_FAILURE","detail":"RESOURCE_EXHAUSTED"}`

	tests := []struct {
		name    string
		rec     recognition.Status
		objects map[string]string
		want    Status
	}{
		{
			name: "still transcribing",
			rec:  recognition.StatusInProgress,
			want: Status{RecognitionStatus: recognition.StatusInProgress, Phase: PhaseTranscribing},
		},
		{
			name:    "recognition done",
			rec:     recognition.StatusCompleted,
			objects: map[string]string{l.RecognitionKey(job): "{}"},
			want:    Status{RecognitionStatus: recognition.StatusCompleted, Phase: PhaseFormatting},
		},
		{
			name: "summary without transcript is not ready",
			rec:  recognition.StatusCompleted,
			objects: map[string]string{
				l.SummaryKey(job): "- orphan",
				l.FailureKey(job): sentinel,
			},
			want: Status{RecognitionStatus: recognition.StatusCompleted, Phase: PhaseFormatting},
		},
		{
			name:    "summarizing",
			rec:     recognition.StatusCompleted,
			objects: map[string]string{l.FormattedKey(job): "text"},
			want:    Status{RecognitionStatus: recognition.StatusCompleted, FormattedReady: true, Phase: PhaseSummarizing},
		},
		{
			name: "completed",
			rec:  recognition.StatusCompleted,
			objects: map[string]string{
				l.FormattedKey(job): "text",
				l.SummaryKey(job):   "- point",
			},
			want: Status{RecognitionStatus: recognition.StatusCompleted, FormattedReady: true, SummaryReady: true, Phase: PhaseCompleted},
		},
		{
			name: "summary after an earlier failure",
			rec:  recognition.StatusCompleted,
			objects: map[string]string{
				l.FormattedKey(job): "text",
				l.SummaryKey(job):   "- point",
				l.FailureKey(job):   sentinel,
			},
			want: Status{RecognitionStatus: recognition.StatusCompleted, FormattedReady: true, SummaryReady: true, Phase: PhaseCompleted},
		},
		{
			name: "summary failed",
			rec:  recognition.StatusCompleted,
			objects: map[string]string{
				l.FormattedKey(job): "text",
				l.FailureKey(job):   sentinel,
			},
			want: Status{
				RecognitionStatus: recognition.StatusCompleted,
				FormattedReady:    true,
				SummaryFailed:     true,
				Failure: &failure.Record{
					Status:    "FAILED",
					ErrorKind: failure.KindUpstreamTransient,
					Detail:    "RESOURCE_EXHAUSTED",
				},
				Phase: PhaseFailed,
			},
		},
		{
			name: "recognition failed",
			rec:  recognition.StatusFailed,
			want: Status{RecognitionStatus: recognition.StatusFailed, Phase: PhaseFailed},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := blob.NewMemory("bucket")
			for key, body := range tt.objects {
				put(t, store, key, body)
			}
			tracker := New(&fakeService{status: tt.rec}, store, l, logger.Discard())

			got, err := tracker.CheckStatus(context.Background(), job)
			if err != nil {
				t.Fatalf("CheckStatus() error = %v", err)
			}
			tt.want.JobName = job
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CheckStatus() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCheckStatusNoTranscriptRegardlessOfRecognition(t *testing.T) {
	for _, rec := range []recognition.Status{recognition.StatusInProgress, recognition.StatusCompleted, recognition.StatusFailed} {
		tracker := New(&fakeService{status: rec}, blob.NewMemory("b"), layout.Default(), logger.Discard())
		got, err := tracker.CheckStatus(context.Background(), job)
		if err != nil {
			t.Fatal(err)
		}
		if got.FormattedReady || got.SummaryReady {
			t.Errorf("%s: formattedReady=%t summaryReady=%t, want both false", rec, got.FormattedReady, got.SummaryReady)
		}
	}
}

func TestCheckStatusUnreadableSentinel(t *testing.T) {
	l := layout.Default()
	store := blob.NewMemory("b")
	put(t, store, l.FormattedKey(job), "text")
	put(t, store, l.FailureKey(job), "not json")

	got, err := New(&fakeService{status: recognition.StatusCompleted}, store, l, logger.Discard()).CheckStatus(context.Background(), job)
	if err != nil {
		t.Fatal(err)
	}
	if !got.SummaryFailed || got.Failure.ErrorKind != failure.KindUnexpected || got.Phase != PhaseFailed {
		t.Errorf("CheckStatus() = %+v", got)
	}
}

func TestCheckStatusPropagatesUpstreamErrors(t *testing.T) {
	notFound := failure.New(failure.KindNotFound, "job status", errors.New("no such job"))
	tracker := New(&fakeService{err: notFound}, blob.NewMemory("b"), layout.Default(), logger.Discard())

	_, err := tracker.CheckStatus(context.Background(), job)
	if failure.KindOf(err) != failure.KindNotFound {
		t.Errorf("CheckStatus() error = %v, want NOT_FOUND", err)
	}
}

func TestRejectsInvalidJobNames(t *testing.T) {
	svc := &fakeService{status: recognition.StatusCompleted}
	tracker := New(svc, blob.NewMemory("b"), layout.Default(), logger.Discard())

	for _, name := range []string{"", "  ", "../audios/x", "a/b"} {
		if _, err := tracker.CheckStatus(context.Background(), name); failure.KindOf(err) != failure.KindInvalidInput {
			t.Errorf("CheckStatus(%q) error = %v, want INVALID_INPUT", name, err)
		}
		if _, err := tracker.GetResults(context.Background(), name); failure.KindOf(err) != failure.KindInvalidInput {
			t.Errorf("GetResults(%q) error = %v, want INVALID_INPUT", name, err)
		}
	}
	if svc.calls != 0 {
		t.Errorf("JobStatus called %d times for invalid names", svc.calls)
	}
}

func TestGetResults(t *testing.T) {
	l := layout.Default()
	ctx := context.Background()

	t.Run("nothing yet", func(t *testing.T) {
		tracker := New(&fakeService{}, blob.NewMemory("b"), l, logger.Discard())
		got, err := tracker.GetResults(ctx, job)
		if err != nil {
			t.Fatal(err)
		}
		if got.Transcription != nil || got.Summary != nil || got.Failure != nil {
			t.Errorf("GetResults() = %+v, want all absent", got)
		}
	})

	t.Run("transcript only", func(t *testing.T) {
		store := blob.NewMemory("b")
		put(t, store, l.FormattedKey(job), "\n\nspk_0: Hola.")
		got, err := New(&fakeService{}, store, l, logger.Discard()).GetResults(ctx, job)
		if err != nil {
			t.Fatal(err)
		}
		if got.Transcription == nil || *got.Transcription != "\n\nspk_0: Hola." {
			t.Errorf("Transcription = %v", got.Transcription)
		}
		if got.Summary != nil {
			t.Errorf("Summary = %q, want absent", *got.Summary)
		}
	})

	t.Run("summary hides earlier failure", func(t *testing.T) {
		store := blob.NewMemory("b")
		put(t, store, l.FormattedKey(job), "text")
		put(t, store, l.SummaryKey(job), "- point")
		put(t, store, l.FailureKey(job), `{"status":"FAILED","errorKind":"UPSTREAM_TRANSIENT_FAILURE","detail":"RESOURCE_EXHAUSTED"}`)
		got, err := New(&fakeService{}, store, l, logger.Discard()).GetResults(ctx, job)
		if err != nil {
			t.Fatal(err)
		}
		if got.Summary == nil || *got.Summary != "- point" {
			t.Errorf("Summary = %v", got.Summary)
		}
		if got.Failure != nil {
			t.Errorf("Failure = %+v, want absent once a summary exists", got.Failure)
		}
	})

	t.Run("failed summary", func(t *testing.T) {
		store := blob.NewMemory("b")
		put(t, store, l.FormattedKey(job), "text")
		put(t, store, l.FailureKey(job), `{"status":"FAILED","errorKind":"UNEXPECTED_FAILURE","detail":"boom"}`)
		got, err := New(&fakeService{}, store, l, logger.Discard()).GetResults(ctx, job)
		if err != nil {
			t.Fatal(err)
		}
		if got.Failure == nil || got.Failure.Detail != "boom" {
			t.Errorf("Failure = %+v", got.Failure)
		}
	})
}

func TestLedgerJobs(t *testing.T) {
	l := layout.Default()
	store := blob.NewMemory("b")
	put(t, store, l.RecognitionKey("job-b"), "{}")
	put(t, store, l.RecognitionKey("job-a"), "{}")
	put(t, store, l.FormattedKey("job-a"), "text")
	put(t, store, l.FormattedKey("job-c"), "text")
	put(t, store, "transcripciones/nested/job-d.json", "{}")
	put(t, store, "transcripciones/notes.md", "x")

	jobs, err := NewLedger(store, l).Jobs(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"job-a", "job-b", "job-c"}
	if !reflect.DeepEqual(jobs, want) {
		t.Errorf("Jobs() = %v, want %v", jobs, want)
	}
}
