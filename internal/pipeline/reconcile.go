package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Reconcile summarizes transcripts that have neither a summary nor a failure
// record and formats recognition results that have no transcript yet. Only
// transcripts that existed before the format pass are summarized here; the
// ones it writes are left to their creation events. It returns how many
// objects were processed.
func (p *implProcessor) Reconcile(ctx context.Context) (int, error) {
	transcripts, err := p.unsummarized(ctx)
	if err != nil {
		return 0, err
	}
	results, err := p.unformatted(ctx)
	if err != nil {
		return 0, err
	}

	formatted, formatErr := p.runAll(ctx, results)
	summarized, summarizeErr := p.runAll(ctx, transcripts)

	return formatted + summarized, errors.Join(formatErr, summarizeErr)
}

func (p *implProcessor) runAll(ctx context.Context, keys []string) (int, error) {
	if len(keys) == 0 {
		return 0, nil
	}
	p.logger.Info(ctx, "Reconciling %d pending objects", len(keys))

	sem := newSemaphore(p.maxConcurrent)
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
		done int
	)
	for _, key := range keys {
		if err := sem.acquire(ctx); err != nil {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
			break
		}
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			defer sem.release()

			err := p.Process(ctx, key)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				p.logger.Error(ctx, "Failed to process %s: %v", key, err)
				errs = append(errs, fmt.Errorf("%s: %w", key, err))
				return
			}
			done++
		}(key)
	}
	wg.Wait()

	return done, errors.Join(errs...)
}

func (p *implProcessor) unformatted(ctx context.Context) ([]string, error) {
	keys, err := p.store.List(ctx, p.layout.RecognitionPrefix)
	if err != nil {
		return nil, fmt.Errorf("list recognition results: %w", err)
	}
	var pending []string
	for _, key := range keys {
		job, ok := p.layout.JobFromRecognitionKey(key)
		if !ok {
			continue
		}
		exists, err := p.store.Exists(ctx, p.layout.FormattedKey(job))
		if err != nil {
			return nil, err
		}
		if !exists {
			pending = append(pending, key)
		}
	}
	return pending, nil
}

func (p *implProcessor) unsummarized(ctx context.Context) ([]string, error) {
	keys, err := p.store.List(ctx, p.layout.FormattedPrefix)
	if err != nil {
		return nil, fmt.Errorf("list formatted transcripts: %w", err)
	}
	var pending []string
	for _, key := range keys {
		if _, ok := p.layout.JobFromFormattedKey(key); !ok {
			continue
		}
		summarized, err := p.store.Exists(ctx, p.layout.SummaryKeyFor(key))
		if err != nil {
			return nil, err
		}
		failed, err := p.store.Exists(ctx, p.layout.FailureKeyFor(key))
		if err != nil {
			return nil, err
		}
		if !summarized && !failed {
			pending = append(pending, key)
		}
	}
	return pending, nil
}
