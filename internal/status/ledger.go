package status

import (
	"context"
	"errors"
	"sort"

	"github.com/nguyentantai21042004/speech-digest/internal/blob"
	"github.com/nguyentantai21042004/speech-digest/internal/failure"
	"github.com/nguyentantai21042004/speech-digest/internal/layout"
)

// Snapshot is what the bucket says about one job.
type Snapshot struct {
	Job              string
	RecognitionReady bool
	FormattedReady   bool
	SummaryReady     bool
	Failure          *failure.Record
}

// Ledger is a read-only view of job progress derived from which keys exist.
type Ledger struct {
	store  blob.Store
	layout layout.Layout
}

func NewLedger(store blob.Store, l layout.Layout) *Ledger {
	return &Ledger{store: store, layout: l}
}

// Inspect checks every stage artifact of job. A summary is only reported once
// the formatted transcript it was built from is present, and a written
// summary hides any failure record left by an earlier attempt.
func (l *Ledger) Inspect(ctx context.Context, job string) (Snapshot, error) {
	snap := Snapshot{Job: job}

	var err error
	if snap.RecognitionReady, err = l.store.Exists(ctx, l.layout.RecognitionKey(job)); err != nil {
		return Snapshot{}, failure.New(failure.KindUnexpected, "check recognition result", err)
	}
	if snap.FormattedReady, err = l.store.Exists(ctx, l.layout.FormattedKey(job)); err != nil {
		return Snapshot{}, failure.New(failure.KindUnexpected, "check formatted transcript", err)
	}
	if !snap.FormattedReady {
		return snap, nil
	}
	if snap.SummaryReady, err = l.store.Exists(ctx, l.layout.SummaryKey(job)); err != nil {
		return Snapshot{}, failure.New(failure.KindUnexpected, "check summary", err)
	}
	if snap.SummaryReady {
		return snap, nil
	}

	rec, err := l.FailureRecord(ctx, job)
	if err != nil {
		return Snapshot{}, err
	}
	snap.Failure = rec
	return snap, nil
}

// FailureRecord returns the summarizer sentinel for job, or nil if none was
// written. A sentinel that cannot be decoded still marks the job failed.
func (l *Ledger) FailureRecord(ctx context.Context, job string) (*failure.Record, error) {
	data, err := l.store.Get(ctx, l.layout.FailureKey(job))
	if errors.Is(err, blob.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, failure.New(failure.KindUnexpected, "read failure record", err)
	}
	rec, err := failure.ParseRecord(data)
	if err != nil {
		rec = failure.Record{Status: failure.StatusFailed, ErrorKind: failure.KindUnexpected, Detail: err.Error()}
	}
	return &rec, nil
}

// Jobs lists every job with a recognition result or a formatted transcript.
func (l *Ledger) Jobs(ctx context.Context) ([]string, error) {
	seen := make(map[string]bool)

	keys, err := l.store.List(ctx, l.layout.RecognitionPrefix)
	if err != nil {
		return nil, failure.New(failure.KindUnexpected, "list recognition results", err)
	}
	for _, key := range keys {
		if job, ok := l.layout.JobFromRecognitionKey(key); ok {
			seen[job] = true
		}
	}

	keys, err = l.store.List(ctx, l.layout.FormattedPrefix)
	if err != nil {
		return nil, failure.New(failure.KindUnexpected, "list formatted transcripts", err)
	}
	for _, key := range keys {
		if job, ok := l.layout.JobFromFormattedKey(key); ok {
			seen[job] = true
		}
	}

	jobs := make([]string, 0, len(seen))
	for job := range seen {
		jobs = append(jobs, job)
	}
	sort.Strings(jobs)
	return jobs, nil
}
