package summarizer

import (
	"context"

	"github.com/nguyentantai21042004/speech-digest/internal/failure"
)

// Summarizer turns formatted transcripts into LLM-generated summaries.
type Summarizer interface {
	// Handle summarizes the transcript stored at key. The returned error is
	// non-nil when the run was cancelled before finishing or when a failure
	// could not even be recorded in storage.
	Handle(ctx context.Context, key string) (Outcome, error)
}

type OutcomeStatus string

const (
	StatusCompleted OutcomeStatus = "COMPLETED"
	StatusFailed    OutcomeStatus = "FAILED"
	StatusSkipped   OutcomeStatus = "SKIPPED"
)

// Outcome is the tagged result of one invocation: Output names the summary
// on success, Failure the sentinel payload written on failure.
type Outcome struct {
	Status     OutcomeStatus   `json:"status"`
	Output     string          `json:"output,omitempty"`
	FailureKey string          `json:"failureKey,omitempty"`
	Failure    *failure.Record `json:"failure,omitempty"`
}
