package formatter

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/speech-digest/internal/logger"
	"github.com/nguyentantai21042004/speech-digest/internal/recognition"
)

// Handle reads the recognition result, formats it and writes the transcript
// to the job's formatted key. Every failure is returned so the event source
// can retry; rewriting the same key is harmless since output is deterministic.
func (f *implFormatter) Handle(ctx context.Context, key string) (Result, error) {
	job, ok := f.layout.JobFromRecognitionKey(key)
	if !ok {
		f.logger.Warn(ctx, "Ignoring non-recognition object: %s", key)
		return Result{Skipped: true}, nil
	}
	ctx = logger.WithJob(ctx, job)
	startTime := time.Now()

	data, err := f.store.Get(ctx, key)
	if err != nil {
		return Result{}, fmt.Errorf("read recognition result: %w", err)
	}
	res, err := recognition.ParseResult(data)
	if err != nil {
		return Result{}, err
	}

	text := Format(res)
	outputKey := f.layout.FormattedKey(job)
	if err := f.store.Put(ctx, outputKey, []byte(text)); err != nil {
		return Result{}, fmt.Errorf("write formatted transcript: %w", err)
	}

	f.logger.Info(ctx, "Formatted %d items from %d speaker segments into %s/%s (%s)",
		len(res.Items), len(res.SpeakerSegments), f.store.Bucket(), outputKey, time.Since(startTime))
	return Result{JobName: job, OutputKey: outputKey}, nil
}
