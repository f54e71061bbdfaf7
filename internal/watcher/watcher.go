package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/speech-digest/internal/logger"
)

type implWatcher struct {
	root      string
	prefixes  []string
	accept    Filter
	handler   EventHandler
	logger    logger.Logger
	watcher   *fsnotify.Watcher
	opts      Options
	semaphore chan struct{}
	wg        sync.WaitGroup
}

// Start dispatches created objects to the handler until ctx is cancelled
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Object watcher started (max concurrent: %d). Monitoring %v under %s",
		w.opts.MaxConcurrent, w.prefixes, w.root)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Waiting for in-flight handlers to complete...")
			w.wg.Wait()
			w.logger.Info(ctx, "Object watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}

			// Renames into a watched dir surface as CREATE too
			if !event.Has(fsnotify.Create) {
				continue
			}
			key, ok := w.keyFor(event.Name)
			if !ok || !w.accept(key) {
				w.logger.Debug(ctx, "Ignoring object: %s", event.Name)
				continue
			}

			w.logger.Info(ctx, "New object detected: %s", key)

			// Acquire semaphore slot (blocks if max concurrent reached)
			select {
			case w.semaphore <- struct{}{}:
				w.wg.Add(1)
				go func(key string) {
					defer w.wg.Done()
					defer func() { <-w.semaphore }()
					w.dispatch(ctx, key)
				}(key)
			case <-ctx.Done():
				w.wg.Wait()
				return ctx.Err()
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// dispatch runs the handler, retrying failures up to MaxAttempts
func (w *implWatcher) dispatch(ctx context.Context, key string) {
	if !sleep(ctx, w.opts.SettleDelay) {
		return
	}
	for attempt := 1; attempt <= w.opts.MaxAttempts; attempt++ {
		err := w.handler(ctx, key)
		if err == nil {
			return
		}
		if attempt == w.opts.MaxAttempts {
			w.logger.Error(ctx, "Failed to process %s after %d attempts: %v", key, attempt, err)
			return
		}
		w.logger.Warn(ctx, "Attempt %d/%d for %s failed: %v", attempt, w.opts.MaxAttempts, key, err)
		if !sleep(ctx, w.opts.RetryDelay*time.Duration(attempt)) {
			return
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// keyFor maps a filesystem path back to an object key
func (w *implWatcher) keyFor(name string) (string, bool) {
	rel, err := filepath.Rel(w.root, name)
	if err != nil {
		return "", false
	}
	key := filepath.ToSlash(rel)
	if key == "." || len(key) >= 2 && key[:2] == ".." {
		return "", false
	}
	return key, true
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}
