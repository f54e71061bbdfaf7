package status

import (
	"context"

	"github.com/nguyentantai21042004/speech-digest/internal/failure"
	"github.com/nguyentantai21042004/speech-digest/internal/recognition"
)

type Phase string

const (
	PhaseTranscribing Phase = "TRANSCRIBING"
	PhaseFormatting   Phase = "FORMATTING"
	PhaseSummarizing  Phase = "SUMMARIZING"
	PhaseCompleted    Phase = "COMPLETED"
	PhaseFailed       Phase = "FAILED"
)

// Status answers checkStatus for one job.
type Status struct {
	JobName           string             `json:"jobName"`
	RecognitionStatus recognition.Status `json:"recognitionStatus"`
	FormattedReady    bool               `json:"formattedReady"`
	SummaryReady      bool               `json:"summaryReady"`
	SummaryFailed     bool               `json:"summaryFailed"`
	Failure           *failure.Record    `json:"failure,omitempty"`
	Phase             Phase              `json:"phase"`
}

// Results holds whichever artifacts of a job exist. Missing ones are nil.
type Results struct {
	JobName       string          `json:"jobName"`
	Transcription *string         `json:"transcription,omitempty"`
	Summary       *string         `json:"summary,omitempty"`
	Failure       *failure.Record `json:"failure,omitempty"`
}

// Tracker answers job progress queries. Both calls are pure reads.
type Tracker interface {
	CheckStatus(ctx context.Context, jobName string) (Status, error)
	GetResults(ctx context.Context, jobName string) (Results, error)
}
