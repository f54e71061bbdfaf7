package logger

import "context"

// Logger defines the printf-style logging interface used across the pipeline
type Logger interface {
	Debug(ctx context.Context, msg string, args ...interface{})
	Info(ctx context.Context, msg string, args ...interface{})
	Warn(ctx context.Context, msg string, args ...interface{})
	Error(ctx context.Context, msg string, args ...interface{})
}

type jobKey struct{}

// WithJob tags ctx so every line logged with it carries the job name
func WithJob(ctx context.Context, jobName string) context.Context {
	return context.WithValue(ctx, jobKey{}, jobName)
}

// JobFrom returns the job name stored by WithJob, if any
func JobFrom(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	job, _ := ctx.Value(jobKey{}).(string)
	return job
}
