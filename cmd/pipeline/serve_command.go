package main

import (
	"context"
	"errors"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/nguyentantai21042004/speech-digest/internal/httpapi"
	"github.com/nguyentantai21042004/speech-digest/internal/watcher"
	"github.com/spf13/cobra"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var noAPI bool
	var noReconcile bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the stage watcher and the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApp(func(a *app) error {
				return runServe(cmd.Context(), a, !noAPI, !noReconcile)
			})
		},
	}
	cmd.Flags().BoolVar(&noAPI, "no-api", false, "Only run the stage watcher")
	cmd.Flags().BoolVar(&noReconcile, "no-reconcile", false, "Skip processing objects written while nothing was watching")
	return cmd
}

func runServe(parent context.Context, a *app, withAPI, reconcile bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := a.cfg
	log := a.logger
	log.Info(ctx, "========================================")
	log.Info(ctx, "Speech digest pipeline")
	log.Info(ctx, "========================================")
	log.Info(ctx, "System: %s/%s", runtime.GOOS, runtime.GOARCH)
	log.Info(ctx, "Bucket: %s (%s)", cfg.Storage.Bucket, cfg.Storage.Root)
	log.Info(ctx, "Recognition backend: %s", cfg.Recognition.Backend)
	log.Info(ctx, "Generation: %s/%s", cfg.Generation.Provider, cfg.Generation.Model)
	log.Info(ctx, "Max Concurrent Processing: %d", cfg.Performance.MaxConcurrent)

	proc, err := a.newProcessor(ctx)
	if err != nil {
		return err
	}

	w, err := watcher.New(cfg.Storage.Root,
		[]string{a.layout.RecognitionPrefix, a.layout.FormattedPrefix},
		proc.Accepts, proc.Process, log,
		watcher.Options{
			MaxConcurrent: cfg.Performance.MaxConcurrent,
			SettleDelay:   cfg.Watcher.SettleDelay(),
			MaxAttempts:   cfg.Watcher.MaxAttempts,
			RetryDelay:    cfg.Watcher.RetryDelay(),
		})
	if err != nil {
		return err
	}
	defer w.Stop()

	// Every return path cancels ctx and waits for in-flight handlers, so no
	// stage is cut off between its upstream call and its write.
	var watchErr error
	watchDone := make(chan struct{})
	go func() {
		defer close(watchDone)
		watchErr = w.Start(ctx)
	}()
	defer func() {
		stop()
		<-watchDone
	}()

	// The watcher is already running, so transcripts produced by reconcile's
	// format pass are summarized through their creation events.
	if reconcile {
		n, err := proc.Reconcile(ctx)
		if err != nil {
			log.Warn(ctx, "Reconcile finished with errors: %v", err)
		}
		if n > 0 {
			log.Info(ctx, "Reconciled %d objects", n)
		}
	}

	if withAPI {
		srv := httpapi.New(cfg.Server.Bind, cfg.Server.AllowedOrigin, a.newSubmitter(), a.newTracker(), a.newLedger(), log)
		if err := srv.Start(ctx); err != nil {
			return err
		}
		defer srv.Stop()
	}

	log.Info(ctx, "Pipeline is ready. Press Ctrl+C to stop")

	select {
	case <-ctx.Done():
		log.Info(ctx, "Shutdown signal received")
	case <-watchDone:
		if watchErr != nil && !errors.Is(watchErr, context.Canceled) {
			log.Error(ctx, "Watcher error: %v", watchErr)
			return watchErr
		}
	}

	log.Info(ctx, "Shutting down gracefully...")
	stop()
	<-watchDone
	a.wait()
	log.Info(ctx, "Pipeline stopped")
	return nil
}
