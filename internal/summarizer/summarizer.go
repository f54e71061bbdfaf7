package summarizer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/speech-digest/internal/failure"
	"github.com/nguyentantai21042004/speech-digest/internal/logger"
)

// Handle reads the transcript, generates its summary and writes it next to
// the job's other summaries. Any failure ends in a FAILED sentinel so that
// pollers stop waiting for a summary that will never appear, except when ctx
// was cancelled mid-run.
func (s *implSummarizer) Handle(ctx context.Context, key string) (Outcome, error) {
	job, ok := s.layout.JobFromFormattedKey(key)
	if !ok {
		s.logger.Warn(ctx, "Ignoring non-transcript object: %s", key)
		return Outcome{Status: StatusSkipped}, nil
	}
	ctx = logger.WithJob(ctx, job)
	s.logger.Info(ctx, "Summarizing %s/%s", s.store.Bucket(), key)

	summaryKey, err := s.summarize(ctx, key)
	if err != nil {
		if interrupted(ctx, err) {
			// No sentinel: the summary can still be produced by a later run.
			s.logger.Warn(ctx, "Summary of %s interrupted: %v", key, err)
			return Outcome{}, fmt.Errorf("summarize %s: %w", key, err)
		}
		return s.fail(ctx, key, err)
	}

	s.logger.Info(ctx, "Summary written to %s/%s", s.store.Bucket(), summaryKey)
	return Outcome{Status: StatusCompleted, Output: summaryKey}, nil
}

func (s *implSummarizer) summarize(ctx context.Context, key string) (string, error) {
	startTime := time.Now()

	data, err := s.store.Get(ctx, key)
	if err != nil {
		return "", failure.New(failure.KindUnexpected, "read transcript", err)
	}

	summary, err := s.generator.Generate(ctx, BuildPrompt(string(data)), s.params)
	if err != nil {
		return "", err
	}

	summaryKey := s.layout.SummaryKeyFor(key)
	if err := s.store.Put(ctx, summaryKey, []byte(summary)); err != nil {
		return "", failure.New(failure.KindUnexpected, "write summary", err)
	}
	s.logger.Debug(ctx, "Generated %d bytes of summary in %s", len(summary), time.Since(startTime))
	return summaryKey, nil
}

func interrupted(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}

// fail writes the sentinel for err. Classified upstream failures and
// unexpected ones are recorded the same way; only their kind differs.
func (s *implSummarizer) fail(ctx context.Context, key string, err error) (Outcome, error) {
	var classified *failure.Error
	if errors.As(err, &classified) && classified.Kind != failure.KindUnexpected {
		s.logger.Error(ctx, "Generation service error: %s - %v", classified.Code, err)
	} else {
		s.logger.Error(ctx, "Unexpected summarizer failure: %v", err)
	}

	record := failure.RecordFor(err)
	outcome := Outcome{Status: StatusFailed, Failure: &record}

	payload, marshalErr := record.Marshal()
	if marshalErr != nil {
		return outcome, fmt.Errorf("encode failure record: %w", marshalErr)
	}
	failureKey := s.layout.FailureKeyFor(key)
	if putErr := s.store.Put(ctx, failureKey, payload); putErr != nil {
		return outcome, fmt.Errorf("write failure record: %w (after %v)", putErr, err)
	}
	outcome.FailureKey = failureKey
	s.logger.Info(ctx, "FAILED status written to %s/%s", s.store.Bucket(), failureKey)
	return outcome, nil
}
