package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/nguyentantai21042004/speech-digest/internal/blob"
	"github.com/nguyentantai21042004/speech-digest/internal/config"
	"github.com/nguyentantai21042004/speech-digest/internal/formatter"
	"github.com/nguyentantai21042004/speech-digest/internal/generation"
	"github.com/nguyentantai21042004/speech-digest/internal/layout"
	"github.com/nguyentantai21042004/speech-digest/internal/logger"
	"github.com/nguyentantai21042004/speech-digest/internal/pipeline"
	"github.com/nguyentantai21042004/speech-digest/internal/recognition"
	"github.com/nguyentantai21042004/speech-digest/internal/status"
	"github.com/nguyentantai21042004/speech-digest/internal/submitter"
	"github.com/nguyentantai21042004/speech-digest/internal/summarizer"
	"github.com/nguyentantai21042004/speech-digest/pkg/executor"
)

// app holds the clients every command shares. Stage handlers are built on
// demand so that read-only commands do not need generation credentials.
type app struct {
	cfg        *config.Config
	logger     logger.Logger
	store      blob.Store
	layout     layout.Layout
	recognizer recognition.Service
	local      *recognition.CommandService
}

func newApp(cfg *config.Config) (*app, error) {
	log := logger.NewWithOptions(logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: os.Stderr,
	})

	store, err := blob.NewFS(cfg.Storage.Root, cfg.Storage.Bucket)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	a := &app{
		cfg:    cfg,
		logger: log,
		store:  store,
		layout: layout.FromConfig(cfg.Storage),
	}

	switch cfg.Recognition.Backend {
	case config.RecognitionCommand:
		a.local = recognition.NewCommandService(store, executor.New(), recognition.CommandConfig{
			BinaryPath: cfg.Recognition.BinaryPath,
			Args:       cfg.Recognition.Args,
			RunTimeout: time.Duration(cfg.Recognition.RunTimeout) * time.Second,
		}, log)
		a.recognizer = a.local
	default:
		a.recognizer = recognition.NewHTTPClient(recognition.ClientConfig{
			BaseURL:        cfg.Recognition.BaseURL,
			APIKey:         cfg.Recognition.APIKey,
			TimeoutSeconds: cfg.Recognition.TimeoutSeconds,
		})
	}
	return a, nil
}

func (a *app) newGenerator(ctx context.Context) (generation.Generator, error) {
	gen := a.cfg.Generation
	timeout := time.Duration(gen.TimeoutSeconds) * time.Second
	switch gen.Provider {
	case config.ProviderChat:
		return generation.NewChat(generation.ChatConfig{
			APIKey:  gen.APIKey,
			BaseURL: gen.BaseURL,
			Model:   gen.Model,
			Timeout: timeout,
		}), nil
	default:
		gemini, err := generation.NewGemini(ctx, generation.GeminiConfig{
			APIKey:  gen.APIKey,
			Model:   gen.Model,
			BaseURL: gen.BaseURL,
			Timeout: timeout,
		})
		if err != nil {
			return nil, err
		}
		return gemini, nil
	}
}

func (a *app) newFormatter() formatter.Formatter {
	return formatter.New(a.store, a.layout, a.logger)
}

func (a *app) newSummarizer(ctx context.Context) (summarizer.Summarizer, error) {
	gen, err := a.newGenerator(ctx)
	if err != nil {
		return nil, fmt.Errorf("create generator: %w", err)
	}
	params := generation.Params{
		MaxTokens:   a.cfg.Generation.MaxTokens,
		Temperature: *a.cfg.Generation.Temperature,
		TopP:        *a.cfg.Generation.TopP,
	}
	return summarizer.New(a.store, gen, params, a.layout, a.logger), nil
}

func (a *app) newProcessor(ctx context.Context) (pipeline.Processor, error) {
	sum, err := a.newSummarizer(ctx)
	if err != nil {
		return nil, err
	}
	return pipeline.New(a.store, a.layout, a.newFormatter(), sum, a.logger, a.cfg.Performance.MaxConcurrent), nil
}

func (a *app) newSubmitter() submitter.Submitter {
	return submitter.New(a.recognizer, a.cfg.Storage.Bucket, a.layout, a.logger)
}

func (a *app) newTracker() status.Tracker {
	return status.New(a.recognizer, a.store, a.layout, a.logger)
}

func (a *app) newLedger() *status.Ledger {
	return status.NewLedger(a.store, a.layout)
}

// wait blocks until locally run recognition jobs finish.
func (a *app) wait() {
	if a.local != nil {
		a.local.Wait()
	}
}
