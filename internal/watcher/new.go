package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/nguyentantai21042004/speech-digest/internal/logger"
)

// Options tunes dispatch concurrency and the retry policy for failed handlers
type Options struct {
	MaxConcurrent int
	SettleDelay   time.Duration
	MaxAttempts   int
	RetryDelay    time.Duration
}

// New creates a Watcher over the given key prefixes of a filesystem bucket
func New(root string, prefixes []string, accept Filter, handler EventHandler, log logger.Logger, opts Options) (Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	for _, prefix := range prefixes {
		dir := filepath.Join(root, filepath.FromSlash(prefix))
		if err := os.MkdirAll(dir, 0755); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("create watch dir %s: %w", dir, err)
		}
		if err := watcher.Add(dir); err != nil {
			watcher.Close()
			return nil, fmt.Errorf("add watch path: %w", err)
		}
	}

	// Default to 2 concurrent if not specified
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 2
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if accept == nil {
		accept = func(string) bool { return true }
	}

	return &implWatcher{
		root:      root,
		prefixes:  prefixes,
		accept:    accept,
		handler:   handler,
		logger:    log,
		watcher:   watcher,
		opts:      opts,
		semaphore: make(chan struct{}, opts.MaxConcurrent),
	}, nil
}
