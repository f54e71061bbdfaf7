package summarizer

import (
	"github.com/nguyentantai21042004/speech-digest/internal/blob"
	"github.com/nguyentantai21042004/speech-digest/internal/generation"
	"github.com/nguyentantai21042004/speech-digest/internal/layout"
	"github.com/nguyentantai21042004/speech-digest/internal/logger"
)

type implSummarizer struct {
	store     blob.Store
	generator generation.Generator
	params    generation.Params
	layout    layout.Layout
	logger    logger.Logger
}

// New creates a Summarizer that generates through gen with the given
// length and sampling bounds.
func New(store blob.Store, gen generation.Generator, params generation.Params, l layout.Layout, log logger.Logger) Summarizer {
	return &implSummarizer{
		store:     store,
		generator: gen,
		params:    params,
		layout:    l,
		logger:    log,
	}
}
