package status

import (
	"context"
	"errors"
	"strings"

	"github.com/nguyentantai21042004/speech-digest/internal/blob"
	"github.com/nguyentantai21042004/speech-digest/internal/failure"
	"github.com/nguyentantai21042004/speech-digest/internal/logger"
	"github.com/nguyentantai21042004/speech-digest/internal/recognition"
)

func (t *implTracker) CheckStatus(ctx context.Context, jobName string) (Status, error) {
	if err := validJobName("check status", jobName); err != nil {
		return Status{}, err
	}
	ctx = logger.WithJob(ctx, jobName)

	recStatus, err := t.service.JobStatus(ctx, jobName)
	if err != nil {
		t.logger.Warn(ctx, "Recognition status lookup failed: %v", err)
		return Status{}, err
	}

	snap, err := t.ledger.Inspect(ctx, jobName)
	if err != nil {
		return Status{}, err
	}

	st := Status{
		JobName:           jobName,
		RecognitionStatus: recStatus,
		FormattedReady:    snap.FormattedReady,
		SummaryReady:      snap.SummaryReady,
		SummaryFailed:     snap.Failure != nil,
		Failure:           snap.Failure,
	}
	st.Phase = phaseOf(recStatus, snap)
	t.logger.Debug(ctx, "Status: %s (formatted=%t summary=%t)", st.Phase, st.FormattedReady, st.SummaryReady)
	return st, nil
}

// phaseOf collapses the ledger and the upstream status into one label.
func phaseOf(rec recognition.Status, snap Snapshot) Phase {
	switch {
	case snap.SummaryReady:
		return PhaseCompleted
	case snap.Failure != nil, rec == recognition.StatusFailed:
		return PhaseFailed
	case snap.FormattedReady:
		return PhaseSummarizing
	case rec == recognition.StatusCompleted, snap.RecognitionReady:
		return PhaseFormatting
	default:
		return PhaseTranscribing
	}
}

func (t *implTracker) GetResults(ctx context.Context, jobName string) (Results, error) {
	if err := validJobName("get results", jobName); err != nil {
		return Results{}, err
	}
	ctx = logger.WithJob(ctx, jobName)

	res := Results{JobName: jobName}
	var err error
	if res.Transcription, err = t.fetch(ctx, t.layout.FormattedKey(jobName)); err != nil {
		return Results{}, err
	}
	if res.Summary, err = t.fetch(ctx, t.layout.SummaryKey(jobName)); err != nil {
		return Results{}, err
	}
	if res.Summary != nil {
		return res, nil
	}
	if res.Failure, err = t.ledger.FailureRecord(ctx, jobName); err != nil {
		return Results{}, err
	}
	return res, nil
}

// fetch returns nil for objects that do not exist yet.
func (t *implTracker) fetch(ctx context.Context, key string) (*string, error) {
	data, err := t.store.Get(ctx, key)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, failure.New(failure.KindUnexpected, "read "+key, err)
	}
	text := string(data)
	return &text, nil
}

func validJobName(op, jobName string) error {
	if strings.TrimSpace(jobName) == "" {
		return failure.InvalidInput(op, "job_name is required")
	}
	if strings.ContainsAny(jobName, "/\\") || strings.Contains(jobName, "..") {
		return failure.InvalidInput(op, "job_name %q is not a valid job name", jobName)
	}
	return nil
}
