package recognition

import "context"

type Status string

const (
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// NormalizeStatus folds upstream job states onto the three states clients see
func NormalizeStatus(raw string) Status {
	switch raw {
	case "COMPLETED":
		return StatusCompleted
	case "FAILED":
		return StatusFailed
	default:
		return StatusInProgress
	}
}

// JobSpec is one recognition request with speaker diarization
type JobSpec struct {
	JobName      string
	MediaURI     string
	MediaFormat  string
	LanguageCode string
	OutputBucket string
	OutputKey    string
	MaxSpeakers  int
}

// Service is the speech recognition collaborator
type Service interface {
	StartJob(ctx context.Context, spec JobSpec) error
	JobStatus(ctx context.Context, jobName string) (Status, error)
}
