package pipeline

import "context"

// Processor routes bucket objects to the stage that consumes them
type Processor interface {
	// Accepts reports whether key triggers any stage.
	Accepts(key string) bool
	// Process runs the stage triggered by key. Keys no stage consumes are a no-op.
	Process(ctx context.Context, key string) error
	// Reconcile processes objects whose next stage never ran, for example
	// because they were written while nothing was watching the bucket.
	// Transcripts it formats are not summarized by the same call.
	Reconcile(ctx context.Context) (int, error)
}
