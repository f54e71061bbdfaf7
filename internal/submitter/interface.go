package submitter

import "context"

// JobRequest asks for one audio object to be transcribed with speaker labels.
type JobRequest struct {
	SourceBucket string
	SourceKey    string
	LanguageCode string
	MaxSpeakers  int
}

// Handle identifies a submitted job. OutputLocation is where the
// recognition result will appear.
type Handle struct {
	JobName        string `json:"jobName"`
	OutputLocation string `json:"outputLocation"`
}

// Submitter starts recognition jobs.
type Submitter interface {
	Submit(ctx context.Context, req JobRequest) (Handle, error)
}
