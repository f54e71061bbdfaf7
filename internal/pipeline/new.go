package pipeline

import (
	"github.com/nguyentantai21042004/speech-digest/internal/blob"
	"github.com/nguyentantai21042004/speech-digest/internal/formatter"
	"github.com/nguyentantai21042004/speech-digest/internal/layout"
	"github.com/nguyentantai21042004/speech-digest/internal/logger"
	"github.com/nguyentantai21042004/speech-digest/internal/summarizer"
)

type implProcessor struct {
	store         blob.Store
	layout        layout.Layout
	formatter     formatter.Formatter
	summarizer    summarizer.Summarizer
	logger        logger.Logger
	maxConcurrent int
}

// New creates a Processor. maxConcurrent bounds Reconcile's parallelism.
func New(store blob.Store, l layout.Layout, f formatter.Formatter, s summarizer.Summarizer, log logger.Logger, maxConcurrent int) Processor {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &implProcessor{
		store:         store,
		layout:        l,
		formatter:     f,
		summarizer:    s,
		logger:        log,
		maxConcurrent: maxConcurrent,
	}
}
