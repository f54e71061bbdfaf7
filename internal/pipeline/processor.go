package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/nguyentantai21042004/speech-digest/internal/summarizer"
)

func (p *implProcessor) Accepts(key string) bool {
	if _, ok := p.layout.JobFromRecognitionKey(key); ok {
		return true
	}
	_, ok := p.layout.JobFromFormattedKey(key)
	return ok
}

func (p *implProcessor) Process(ctx context.Context, key string) error {
	startTime := time.Now()

	if _, ok := p.layout.JobFromRecognitionKey(key); ok {
		res, err := p.formatter.Handle(ctx, key)
		if err != nil {
			return fmt.Errorf("format: %w", err)
		}
		if !res.Skipped {
			p.logger.Info(ctx, "Formatted %s -> %s in %s", key, res.OutputKey, time.Since(startTime))
		}
		return nil
	}

	if _, ok := p.layout.JobFromFormattedKey(key); ok {
		outcome, err := p.summarizer.Handle(ctx, key)
		if err != nil {
			return fmt.Errorf("summarize: %w", err)
		}
		switch outcome.Status {
		case summarizer.StatusCompleted:
			p.logger.Info(ctx, "Summarized %s -> %s in %s", key, outcome.Output, time.Since(startTime))
		case summarizer.StatusFailed:
			p.logger.Warn(ctx, "Summary for %s failed (%s), recorded at %s", key, outcome.Failure.ErrorKind, outcome.FailureKey)
		}
		return nil
	}

	p.logger.Debug(ctx, "No stage consumes %s", key)
	return nil
}
