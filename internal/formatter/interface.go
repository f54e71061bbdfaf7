package formatter

import "context"

// Formatter turns recognition results into speaker-attributed transcripts
type Formatter interface {
	// Handle formats the recognition result stored at key. Keys outside the
	// recognition prefix are skipped without error.
	Handle(ctx context.Context, key string) (Result, error)
}

// Result describes one Handle invocation
type Result struct {
	Skipped   bool   `json:"skipped"`
	JobName   string `json:"jobName,omitempty"`
	OutputKey string `json:"outputKey,omitempty"`
}
